package biz

import (
	"github.com/hareeshbabu82ns/devhub-search/internal/dictionary/types"
)

// Assemble shapes raw rows plus a total count into the result envelope.
// It upholds the envelope invariant for every input, including zero
// totals, short last pages and offsets beyond the total, so callers
// never special-case pagination arithmetic.
func Assemble(rows []types.WordRow, total int64, limit, offset int) types.ResultEnvelope {
	if rows == nil {
		rows = []types.WordRow{}
	}

	env := types.ResultEnvelope{
		Results: rows,
		Total:   total,
	}

	if int64(offset+len(rows)) < total {
		env.HasMore = true
		next := offset + limit
		env.NextOffset = &next
	}

	return env
}
