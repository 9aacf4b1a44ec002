package nfe

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

// DecodificarDocZip decodifica o campo docZip da distribuição de DF-e:
// Base64 -> bytes -> gzip. Quando os bytes não têm a assinatura gzip, o
// serviço upstream enviou o XML sem compressão; devolvemos o conteúdo como
// está e comprimido=false para que o chamador registre o caso (fallback
// preservado do comportamento observado em produção, auditável via log).
func DecodificarDocZip(b64 string) (xml string, comprimido bool, err error) {
	// Alguns gateways quebram o Base64 em linhas; o decoder padrão não aceita.
	limpo := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
			return -1
		}
		return r
	}, b64)

	raw, err := base64.StdEncoding.DecodeString(limpo)
	if err != nil {
		return "", false, fmt.Errorf("docZip: base64 inválido: %w", err)
	}

	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		// Sem magic number gzip: tratar como XML plano.
		return string(raw), false, nil
	}
	defer zr.Close()

	inflado, err := io.ReadAll(zr)
	if err != nil {
		return "", false, fmt.Errorf("docZip: descomprimir gzip: %w", err)
	}
	return string(inflado), true, nil
}
