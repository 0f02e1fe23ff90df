package workflow

import (
	"context"
	"fmt"

	"github.com/garyjia/procurement-portal/internal/domain/entity"
)

const receiptSequence = "receipt"

var numberFormats = map[entity.Kind]string{
	entity.KindGoodsRequest:    "%d-%d",
	entity.KindPaymentRequest:  "PAY-%d-%d",
	entity.KindProjectProposal: "PP-%d-%d",
}

// nextNumber allocates the human-readable number of a new entity inside the caller's transaction
func (e *Engine) nextNumber(ctx context.Context, kind entity.Kind) (string, error) {
	n, err := e.repos.Sequences.Next(ctx, string(kind))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(numberFormats[kind], e.year, n), nil
}

// nextReceiptNumber allocates a global receipt number such as R-00042
func (e *Engine) nextReceiptNumber(ctx context.Context) (string, error) {
	n, err := e.repos.Sequences.Next(ctx, receiptSequence)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("R-%05d", n), nil
}
