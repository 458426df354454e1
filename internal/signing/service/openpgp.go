package service

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/packet"

	dataKeyDomain "github.com/allisson/signatrust/internal/datakey/domain"
)

const openPGPMessageType = "PGP MESSAGE"

// maxOpenPGPLifetime is the longest key lifetime the 32-bit expiration subpacket can carry.
const maxOpenPGPLifetime = time.Duration(math.MaxUint32) * time.Second

// GenerateOpenPGPKeys creates an armored OpenPGP key pair bound to the name and email
// parameters. Recognised parameters: key_type (rsa, eddsa), key_length (2048, 3072, 4096),
// digest_algorithm and expire_at.
func GenerateOpenPGPKeys(params map[string]string) ([]byte, []byte, []byte, error) {
	name := params[dataKeyDomain.AttributeName]
	email := params[dataKeyDomain.AttributeEmail]
	if name == "" || email == "" {
		return nil, nil, nil, fmt.Errorf("%w: openpgp keys require name and email", dataKeyDomain.ErrParameter)
	}

	keyType, err := parseChoice(params, ParamKeyType, "rsa", "rsa", "eddsa")
	if err != nil {
		return nil, nil, nil, err
	}
	keyLength, err := parseKeyLength(params, 2048, 2048, 3072, 4096)
	if err != nil {
		return nil, nil, nil, err
	}
	digest, err := parseDigest(params)
	if err != nil {
		return nil, nil, nil, err
	}

	now := time.Now().UTC()
	config := &packet.Config{
		DefaultHash: digest,
		Time:        func() time.Time { return now },
	}
	switch keyType {
	case "eddsa":
		config.Algorithm = packet.PubKeyAlgoEdDSA
	default:
		config.Algorithm = packet.PubKeyAlgoRSA
		config.RSABits = keyLength
	}

	expireAt, ok, err := parseTime(params, dataKeyDomain.AttributeExpireAt)
	if err != nil {
		return nil, nil, nil, err
	}
	if ok {
		lifetime := expireAt.Sub(now)
		if lifetime <= 0 {
			return nil, nil, nil, fmt.Errorf("%w: expire_at is in the past", dataKeyDomain.ErrParameter)
		}
		if lifetime > maxOpenPGPLifetime {
			return nil, nil, nil, fmt.Errorf("%w: expire_at is more than %d seconds away",
				dataKeyDomain.ErrParameter, uint32(math.MaxUint32))
		}
		config.KeyLifetimeSecs = uint32(lifetime / time.Second)
	}

	entity, err := openpgp.NewEntity(name, "", email, config)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to generate openpgp key: %w", err)
	}

	privateKey, err := armorEncode(openpgp.PrivateKeyType, func(w io.Writer) error {
		return entity.SerializePrivate(w, config)
	})
	if err != nil {
		return nil, nil, nil, err
	}

	publicKey, err := armorEncode(openpgp.PublicKeyType, entity.Serialize)
	if err != nil {
		return nil, nil, nil, err
	}

	return privateKey, publicKey, []byte{}, nil
}

// OpenPGPPlugin signs with a parsed OpenPGP entity.
type OpenPGPPlugin struct {
	identity string
	entity   *openpgp.Entity
}

// NewOpenPGPPlugin parses the armored private key held by secKey.
func NewOpenPGPPlugin(secKey *dataKeyDomain.SecKey) (*OpenPGPPlugin, error) {
	keyRing, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(secKey.PrivateKey()))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", dataKeyDomain.ErrKeyParse, err)
	}
	if len(keyRing) == 0 || keyRing[0].PrivateKey == nil {
		return nil, fmt.Errorf("%w: no openpgp private key found", dataKeyDomain.ErrKeyParse)
	}
	if keyRing[0].PrivateKey.Encrypted {
		return nil, fmt.Errorf("%w: openpgp private key is passphrase protected", dataKeyDomain.ErrKeyParse)
	}

	return &OpenPGPPlugin{identity: secKey.Identity(), entity: keyRing[0]}, nil
}

// Sign produces a detached signature by default, or an inline signed message when the
// detached option is false. Output is ASCII armored unless armored is false.
func (p *OpenPGPPlugin) Sign(content []byte, options map[string]string) ([]byte, error) {
	detached, err := parseBool(options, OptionDetached, true)
	if err != nil {
		return nil, err
	}
	armored, err := parseBool(options, OptionArmored, true)
	if err != nil {
		return nil, err
	}
	digest, err := parseDigest(options)
	if err != nil {
		return nil, err
	}

	config := &packet.Config{DefaultHash: digest}

	var signature []byte
	if detached {
		signature, err = p.detachSign(content, armored, config)
	} else {
		signature, err = p.inlineSign(content, armored, config)
	}
	if err != nil {
		return nil, dataKeyDomain.NewSignError(p.identity, err)
	}
	return signature, nil
}

func (p *OpenPGPPlugin) detachSign(content []byte, armored bool, config *packet.Config) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	if armored {
		err = openpgp.ArmoredDetachSign(&buf, p.entity, bytes.NewReader(content), config)
	} else {
		err = openpgp.DetachSign(&buf, p.entity, bytes.NewReader(content), config)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (p *OpenPGPPlugin) inlineSign(content []byte, armored bool, config *packet.Config) ([]byte, error) {
	write := func(w io.Writer) error {
		plaintext, err := openpgp.Sign(w, p.entity, nil, config)
		if err != nil {
			return err
		}
		if _, err := plaintext.Write(content); err != nil {
			return err
		}
		return plaintext.Close()
	}

	if armored {
		return armorEncode(openPGPMessageType, write)
	}

	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func armorEncode(blockType string, write func(io.Writer) error) ([]byte, error) {
	var buf bytes.Buffer
	w, err := armor.Encode(&buf, blockType, nil)
	if err != nil {
		return nil, err
	}
	if err := write(w); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
