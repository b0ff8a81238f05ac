// Firma CMS (PKCS#7) del TRA con el certificado del contribuyente.

package wsaa

import (
	"crypto"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"go.mozilla.org/pkcs7"
	"golang.org/x/crypto/pkcs12"

	pkgafip "github.com/contableweb/contable-api/pkg/afip"
)

// ── Carga de certificado ──────────────────────────────────────────────────────

// LoadCertificate carga certificado y llave privada desde un archivo .p12/.pfx
// (con password, posiblemente vacío) o desde PEM. keyPath vacío asume que el
// PEM de certPath incluye también la llave.
func LoadCertificate(certPath, keyPath, password string) (tls.Certificate, error) {
	if certPath == "" {
		return tls.Certificate{}, &pkgafip.SigningError{Op: "cargar certificado", Err: fmt.Errorf("ruta de certificado vacía")}
	}

	lower := strings.ToLower(certPath)
	if strings.HasSuffix(lower, ".p12") || strings.HasSuffix(lower, ".pfx") {
		data, err := os.ReadFile(certPath)
		if err != nil {
			return tls.Certificate{}, &pkgafip.SigningError{Op: "leer p12", Err: err}
		}
		priv, cert, err := pkcs12.Decode(data, password)
		if err != nil {
			return tls.Certificate{}, &pkgafip.SigningError{Op: "decodificar p12", Err: err}
		}
		return tls.Certificate{
			Certificate: [][]byte{cert.Raw},
			PrivateKey:  priv,
			Leaf:        cert,
		}, nil
	}

	if keyPath == "" {
		keyPath = certPath
	}
	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return tls.Certificate{}, &pkgafip.SigningError{Op: "cargar PEM", Err: err}
	}
	if cert.Leaf == nil && len(cert.Certificate) > 0 {
		leaf, err := x509.ParseCertificate(cert.Certificate[0])
		if err != nil {
			return tls.Certificate{}, &pkgafip.SigningError{Op: "parsear certificado PEM", Err: err}
		}
		cert.Leaf = leaf
	}
	return cert, nil
}

// ── Firmador ──────────────────────────────────────────────────────────────────

// Signer firma TRAs en formato CMS. Se construye una vez con el certificado
// cargado y es seguro para uso concurrente (no tiene estado mutable).
type Signer struct {
	cert tls.Certificate
}

// NewSigner construye el firmador cargando el certificado de disco.
func NewSigner(certPath, keyPath, password string) (*Signer, error) {
	cert, err := LoadCertificate(certPath, keyPath, password)
	if err != nil {
		return nil, err
	}
	return NewSignerWithCert(cert)
}

// NewSignerWithCert construye el firmador con un certificado ya cargado.
// Útil en tests, donde el certificado se genera en memoria.
func NewSignerWithCert(cert tls.Certificate) (*Signer, error) {
	if cert.Leaf == nil {
		return nil, &pkgafip.SigningError{Op: "validar certificado", Err: fmt.Errorf("certificado sin hoja (Leaf) parseada")}
	}
	if cert.PrivateKey == nil {
		return nil, &pkgafip.SigningError{Op: "validar certificado", Err: fmt.Errorf("certificado sin llave privada")}
	}
	return &Signer{cert: cert}, nil
}

// Certificate expone el certificado hoja, para logging de vencimiento.
func (s *Signer) Certificate() *x509.Certificate {
	return s.cert.Leaf
}

// Sign firma el TRA y devuelve el CMS en Base64, listo para embeber en el
// envelope SOAP de loginCms. La estructura incluye solo el certificado del
// firmante (sin cadena) e identifica al firmante por emisor y serial, que es
// lo que WSAA espera.
func (s *Signer) Sign(tra string) (string, error) {
	signed, err := pkcs7.NewSignedData([]byte(tra))
	if err != nil {
		return "", &pkgafip.SigningError{Op: "inicializar CMS", Err: err}
	}
	signed.SetDigestAlgorithm(pkcs7.OIDDigestAlgorithmSHA256)

	signer, ok := s.cert.PrivateKey.(crypto.Signer)
	if !ok {
		return "", &pkgafip.SigningError{Op: "firmar CMS", Err: fmt.Errorf("la llave privada no implementa crypto.Signer")}
	}
	if err := signed.AddSigner(s.cert.Leaf, signer, pkcs7.SignerInfoConfig{}); err != nil {
		return "", &pkgafip.SigningError{Op: "firmar CMS", Err: err}
	}

	der, err := signed.Finish()
	if err != nil {
		return "", &pkgafip.SigningError{Op: "serializar CMS", Err: err}
	}

	// Verificación local antes de salir al wire: si la firma no cierra acá,
	// WSAA la va a rechazar con un fault mucho menos descriptivo.
	if err := verifyCMS(der); err != nil {
		return "", &pkgafip.SigningError{Op: "verificar CMS", Err: err}
	}

	return base64.StdEncoding.EncodeToString(der), nil
}

func verifyCMS(der []byte) error {
	p7, err := pkcs7.Parse(der)
	if err != nil {
		return fmt.Errorf("reparsear CMS: %w", err)
	}
	if err := p7.Verify(); err != nil {
		return fmt.Errorf("la firma no verifica contra el propio certificado: %w", err)
	}
	return nil
}
