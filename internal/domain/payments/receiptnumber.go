package payments

import (
	"fmt"
	"strings"
	"time"

	hashids "github.com/speps/go-hashids/v2"
)

// ReceiptNumberGenerator produces short, non-sequential receipt numbers so
// printed receipts do not reveal payment volume.
type ReceiptNumberGenerator struct {
	h *hashids.HashID
}

func NewReceiptNumberGenerator(salt string) (*ReceiptNumberGenerator, error) {
	data := hashids.NewData()
	data.Salt = salt
	data.MinLength = 8
	data.Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	h, err := hashids.NewWithData(data)
	if err != nil {
		return nil, fmt.Errorf("receipt number generator: %w", err)
	}
	return &ReceiptNumberGenerator{h: h}, nil
}

// Generate encodes the student id together with the payment timestamp.
func (g *ReceiptNumberGenerator) Generate(studentID int64, paidAt time.Time) (string, error) {
	encoded, err := g.h.EncodeInt64([]int64{studentID, paidAt.Unix()})
	if err != nil {
		return "", fmt.Errorf("encode receipt number: %w", err)
	}
	return "RCP-" + strings.ToUpper(encoded), nil
}
