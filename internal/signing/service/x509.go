package service

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"time"

	"github.com/youmark/pkcs8"

	dataKeyDomain "github.com/allisson/signatrust/internal/datakey/domain"
)

// X.509 subject parameters.
const (
	ParamCommonName         = "common_name"
	ParamOrganization       = "organization"
	ParamOrganizationalUnit = "organizational_unit"
	ParamCountry            = "country"
	ParamLocality           = "locality"
	ParamProvince           = "province"
)

const (
	pemPrivateKey  = "PRIVATE KEY"
	pemPublicKey   = "PUBLIC KEY"
	pemCertificate = "CERTIFICATE"
)

// GenerateX509Keys creates a PKCS#8 private key, its PKIX public key and a self-signed
// code signing certificate. common_name defaults to name; validity follows create_at and
// expire_at when present.
func GenerateX509Keys(params map[string]string) ([]byte, []byte, []byte, error) {
	keyType, err := parseChoice(params, ParamKeyType, "ecdsa", "ecdsa", "rsa")
	if err != nil {
		return nil, nil, nil, err
	}
	digest, err := parseDigest(params)
	if err != nil {
		return nil, nil, nil, err
	}

	var signer crypto.Signer
	var signatureAlgorithm x509.SignatureAlgorithm
	switch keyType {
	case "rsa":
		bits, err := parseKeyLength(params, 2048, 2048, 3072, 4096)
		if err != nil {
			return nil, nil, nil, err
		}
		if signer, err = rsa.GenerateKey(rand.Reader, bits); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to generate rsa key: %w", err)
		}
		signatureAlgorithm = map[crypto.Hash]x509.SignatureAlgorithm{
			crypto.SHA256: x509.SHA256WithRSA,
			crypto.SHA384: x509.SHA384WithRSA,
			crypto.SHA512: x509.SHA512WithRSA,
		}[digest]
	default:
		bits, err := parseKeyLength(params, 256, 256, 384)
		if err != nil {
			return nil, nil, nil, err
		}
		curve := elliptic.P256()
		if bits == 384 {
			curve = elliptic.P384()
		}
		if signer, err = ecdsa.GenerateKey(curve, rand.Reader); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to generate ecdsa key: %w", err)
		}
		signatureAlgorithm = map[crypto.Hash]x509.SignatureAlgorithm{
			crypto.SHA256: x509.ECDSAWithSHA256,
			crypto.SHA384: x509.ECDSAWithSHA384,
			crypto.SHA512: x509.ECDSAWithSHA512,
		}[digest]
	}

	template, err := certificateTemplate(params)
	if err != nil {
		return nil, nil, nil, err
	}
	template.SignatureAlgorithm = signatureAlgorithm

	certDER, err := x509.CreateCertificate(rand.Reader, template, template, signer.Public(), signer)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create certificate: %w", err)
	}

	privateDER, err := pkcs8.MarshalPrivateKey(signer, nil, nil)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal private key: %w", err)
	}
	publicDER, err := x509.MarshalPKIXPublicKey(signer.Public())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal public key: %w", err)
	}

	return pem.EncodeToMemory(&pem.Block{Type: pemPrivateKey, Bytes: privateDER}),
		pem.EncodeToMemory(&pem.Block{Type: pemPublicKey, Bytes: publicDER}),
		pem.EncodeToMemory(&pem.Block{Type: pemCertificate, Bytes: certDER}),
		nil
}

func certificateTemplate(params map[string]string) (*x509.Certificate, error) {
	commonName := params[ParamCommonName]
	if commonName == "" {
		commonName = params[dataKeyDomain.AttributeName]
	}
	if commonName == "" {
		return nil, fmt.Errorf("%w: x509 keys require common_name or name", dataKeyDomain.ErrParameter)
	}

	notBefore, ok, err := parseTime(params, dataKeyDomain.AttributeCreateAt)
	if err != nil {
		return nil, err
	}
	if !ok {
		notBefore = time.Now().UTC()
	}
	notAfter, ok, err := parseTime(params, dataKeyDomain.AttributeExpireAt)
	if err != nil {
		return nil, err
	}
	if !ok {
		notAfter = notBefore.AddDate(1, 0, 0)
	}
	if !notAfter.After(notBefore) {
		return nil, fmt.Errorf("%w: expire_at must be after create_at", dataKeyDomain.ErrParameter)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, fmt.Errorf("failed to generate serial number: %w", err)
	}

	template := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			CommonName:         commonName,
			Organization:       optional(params[ParamOrganization]),
			OrganizationalUnit: optional(params[ParamOrganizationalUnit]),
			Country:            optional(params[ParamCountry]),
			Locality:           optional(params[ParamLocality]),
			Province:           optional(params[ParamProvince]),
		},
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageCodeSigning},
		BasicConstraintsValid: true,
	}
	if email := params[dataKeyDomain.AttributeEmail]; email != "" {
		template.EmailAddresses = []string{email}
	}
	return template, nil
}

func optional(value string) []string {
	if value == "" {
		return nil
	}
	return []string{value}
}

// X509Plugin signs digests with a PKCS#8 private key.
type X509Plugin struct {
	identity    string
	signer      crypto.Signer
	certificate *x509.Certificate
	now         func() time.Time
}

// NewX509Plugin parses the PEM private key and, when present, the certificate held by secKey.
func NewX509Plugin(secKey *dataKeyDomain.SecKey) (*X509Plugin, error) {
	block, _ := pem.Decode(secKey.PrivateKey())
	if block == nil || block.Type != pemPrivateKey {
		return nil, fmt.Errorf("%w: no PEM encoded PKCS#8 private key found", dataKeyDomain.ErrKeyParse)
	}

	key, err := pkcs8.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", dataKeyDomain.ErrKeyParse, err)
	}
	signer, ok := key.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported private key %T", dataKeyDomain.ErrKeyParse, key)
	}

	plugin := &X509Plugin{identity: secKey.Identity(), signer: signer, now: time.Now}

	if certPEM := secKey.Certificate(); len(certPEM) > 0 {
		certBlock, _ := pem.Decode(certPEM)
		if certBlock == nil || certBlock.Type != pemCertificate {
			return nil, fmt.Errorf("%w: no PEM encoded certificate found", dataKeyDomain.ErrKeyParse)
		}
		cert, err := x509.ParseCertificate(certBlock.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", dataKeyDomain.ErrKeyParse, err)
		}
		if !publicKeysMatch(cert.PublicKey, signer.Public()) {
			return nil, fmt.Errorf("%w: certificate does not match private key", dataKeyDomain.ErrKeyParse)
		}
		plugin.certificate = cert
	}
	return plugin, nil
}

// Sign returns the raw signature over the digest of content: ASN.1 for ECDSA, PKCS#1 v1.5
// for RSA. Only detached signatures are supported. A key stored with a certificate
// refuses to sign outside the certificate validity period.
func (p *X509Plugin) Sign(content []byte, options map[string]string) ([]byte, error) {
	detached, err := parseBool(options, OptionDetached, true)
	if err != nil {
		return nil, err
	}
	if !detached {
		return nil, fmt.Errorf("%w: x509 keys only produce detached signatures", dataKeyDomain.ErrParameter)
	}
	digest, err := parseDigest(options)
	if err != nil {
		return nil, err
	}
	if err := p.checkValidity(); err != nil {
		return nil, err
	}

	h := digest.New()
	h.Write(content)

	signature, err := p.signer.Sign(rand.Reader, h.Sum(nil), digest)
	if err != nil {
		return nil, dataKeyDomain.NewSignError(p.identity, err)
	}
	return signature, nil
}

func (p *X509Plugin) checkValidity() error {
	if p.certificate == nil {
		return nil
	}
	now := p.now()
	if now.Before(p.certificate.NotBefore) || now.After(p.certificate.NotAfter) {
		return dataKeyDomain.NewSignError(p.identity, fmt.Errorf(
			"certificate is only valid from %s to %s",
			p.certificate.NotBefore.UTC().Format(time.RFC3339),
			p.certificate.NotAfter.UTC().Format(time.RFC3339),
		))
	}
	return nil
}

func publicKeysMatch(a, b crypto.PublicKey) bool {
	type equaler interface {
		Equal(crypto.PublicKey) bool
	}
	key, ok := a.(equaler)
	return ok && key.Equal(b)
}
