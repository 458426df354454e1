package commands

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/signatrust/internal/validation"
)

// MinAdminTokenLength is the shortest admin token hash-token accepts.
const MinAdminTokenLength = 16

// TokenHasher hashes admin tokens.
type TokenHasher interface {
	GenerateToken() (plainToken string, tokenHash string, err error)
	HashToken(plainToken string) (tokenHash string, err error)
}

type hashTokenOutput struct {
	Token string `json:"token,omitempty"`
	Hash  string `json:"hash"`
}

// RunHashToken prints the hash to put in ADMIN_TOKEN_HASH. With generate a random token is
// created and printed once next to its hash. Otherwise the token comes from token or, when
// empty, from the first line of streams.Reader.
func RunHashToken(hasher TokenHasher, streams IOTuple, token string, generate bool, format string) error {
	var output hashTokenOutput

	if generate {
		plain, hash, err := hasher.GenerateToken()
		if err != nil {
			return fmt.Errorf("failed to generate token: %w", err)
		}
		output = hashTokenOutput{Token: plain, Hash: hash}
	} else {
		if token == "" {
			line, err := readLine(streams.Reader)
			if err != nil {
				return err
			}
			token = line
		}

		err := validation.Validate(token,
			validation.Required,
			customValidation.NoWhitespace,
			customValidation.TokenStrength{MinLength: MinAdminTokenLength, MinClasses: 2},
		)
		if err != nil {
			return fmt.Errorf("invalid token: %w", err)
		}

		hash, err := hasher.HashToken(token)
		if err != nil {
			return fmt.Errorf("failed to hash token: %w", err)
		}
		output = hashTokenOutput{Hash: hash}
	}

	return writeOutput(streams.Writer, format, output, func(w io.Writer) error {
		if output.Token != "" {
			if _, err := fmt.Fprintf(w, "Token: %s\n", output.Token); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, "ADMIN_TOKEN_HASH=%s\n", output.Hash)
		return err
	})
}

func readLine(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
		return "", fmt.Errorf("no token provided")
	}
	return strings.TrimSpace(scanner.Text()), nil
}
