package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money representa um valor monetário com semântica de ponto fixo.
// A serialização JSON emite sempre um número decimal puro (sem aspas),
// independente de qualquer configuração global do pacote decimal.
type Money struct {
	dec decimal.Decimal
}

// FromString cria um Money a partir de uma string decimal ("10.00")
func FromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid money value %q: %w", s, err)
	}
	return Money{dec: d}, nil
}

// MustFromString é como FromString, mas entra em pânico em caso de erro.
// Uso restrito a testes e valores literais.
func MustFromString(s string) Money {
	m, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

// FromInt cria um Money a partir de um inteiro de unidades
func FromInt(v int64) Money {
	return Money{dec: decimal.NewFromInt(v)}
}

// Zero retorna o valor monetário zero
func Zero() Money {
	return Money{}
}

// MulInt multiplica o valor por uma quantidade inteira
func (m Money) MulInt(q int) Money {
	return Money{dec: m.dec.Mul(decimal.NewFromInt(int64(q)))}
}

// Add soma dois valores monetários
func (m Money) Add(other Money) Money {
	return Money{dec: m.dec.Add(other.dec)}
}

// IsNegative informa se o valor é negativo
func (m Money) IsNegative() bool {
	return m.dec.IsNegative()
}

// IsZero informa se o valor é zero
func (m Money) IsZero() bool {
	return m.dec.IsZero()
}

// Equal compara dois valores monetários
func (m Money) Equal(other Money) bool {
	return m.dec.Equal(other.dec)
}

// String retorna a representação decimal mínima ("30.5"; zeros à
// direita são removidos)
func (m Money) String() string {
	return m.dec.String()
}

// MarshalJSON emite um número JSON sem aspas. A configuração é local ao
// tipo: nenhuma dependência de decimal.MarshalJSONWithoutQuotes ou de
// estado de locale do processo.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.dec.String()), nil
}

// UnmarshalJSON aceita números JSON e, por tolerância com produtores
// antigos, strings entre aspas.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid money value %s: %w", string(data), err)
	}
	m.dec = d
	return nil
}
