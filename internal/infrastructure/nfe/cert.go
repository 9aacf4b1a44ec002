package nfe

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/pkcs12"

	"github.com/samuelalbuquerque01/Sistema-de-estoque-sub000/pkg/config"
)

// TLSIdentity agrupa o material de identidade para o TLS mútuo com a SEFAZ:
// certificado de cliente + chave privada, mais a cadeia de CAs opcional.
// Construída uma única vez na subida da aplicação e passada por referência
// ao cliente SOAP; evita reler arquivos de certificado a cada chamada e
// torna o caso "não configurado" testável sem arquivos reais.
type TLSIdentity struct {
	cert   tls.Certificate
	caPool *x509.CertPool
}

// LoadTLSIdentity carrega o certificado a partir da configuração.
// CertPath vazio devolve uma identidade não configurada, sem erro: a decisão
// de falhar fica para a primeira tentativa de consulta remota.
func LoadTLSIdentity(cfg config.NFEConfig) (*TLSIdentity, error) {
	id := &TLSIdentity{}
	if cfg.CertPath == "" {
		return id, nil
	}

	var err error
	lower := strings.ToLower(cfg.CertPath)
	if strings.HasSuffix(lower, ".p12") || strings.HasSuffix(lower, ".pfx") {
		id.cert, err = loadFromP12(cfg.CertPath, cfg.CertPassword)
	} else {
		id.cert, err = loadFromPEM(cfg.CertPath, cfg.CertKeyPath)
	}
	if err != nil {
		return nil, err
	}

	if cfg.CABundlePath != "" {
		pem, err := os.ReadFile(cfg.CABundlePath)
		if err != nil {
			return nil, fmt.Errorf("ler CA bundle: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("CA bundle %s sem certificados PEM válidos", cfg.CABundlePath)
		}
		id.caPool = pool
	}

	return id, nil
}

// Configurado informa se há material de certificado carregado. Sem I/O.
func (i *TLSIdentity) Configurado() bool {
	return i != nil && len(i.cert.Certificate) > 0 && i.cert.PrivateKey != nil
}

// ClientTLSConfig monta a configuração TLS do cliente. A validação do
// certificado do servidor permanece sempre ativa; nunca relaxar por
// conveniência de ambiente.
func (i *TLSIdentity) ClientTLSConfig() *tls.Config {
	cfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
	}
	if i.Configurado() {
		cfg.Certificates = []tls.Certificate{i.cert}
	}
	if i.caPool != nil {
		cfg.RootCAs = i.caPool
	}
	return cfg
}

// loadFromP12 carrega certificado e chave privada de um arquivo .p12/.pfx (A1).
func loadFromP12(path, password string) (tls.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("ler p12: %w", err)
	}
	priv, cert, err := pkcs12.Decode(data, password)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("decodificar p12: %w", err)
	}
	return tls.Certificate{
		Certificate: [][]byte{cert.Raw},
		PrivateKey:  priv,
		Leaf:        cert,
	}, nil
}

// loadFromPEM carrega certificado e chave de arquivos PEM (separados ou combinados).
func loadFromPEM(certPath, keyPath string) (tls.Certificate, error) {
	if keyPath == "" {
		// Um único arquivo pode conter cert+key em PEM.
		keyPath = certPath
	}
	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("carregar certificado PEM: %w", err)
	}
	return cert, nil
}
