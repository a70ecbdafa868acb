package automation

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"

	"go-excelproc/internal/jobs"
	"go-excelproc/internal/sheet"
)

var ErrMissingUser = errors.New("record has no user")

// DryRun logs each record instead of driving a browser. It is used when no
// script is configured.
type DryRun struct {
	log *zap.Logger
}

func NewDryRun(log *zap.Logger) *DryRun {
	if log == nil {
		log = zap.NewNop()
	}
	return &DryRun{log: log}
}

func (d *DryRun) Begin(context.Context) (jobs.Run, error) {
	return d, nil
}

// Process accepts any record that names a user.
func (d *DryRun) Process(ctx context.Context, rec sheet.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(rec.Get(sheet.UserColumn)) == "" {
		return ErrMissingUser
	}

	keys := make([]string, 0, len(rec.Fields))
	for k := range rec.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	d.log.Info("dry run",
		zap.Int("row", rec.Row),
		zap.String("user", rec.Label()),
		zap.Strings("columns", keys))
	return nil
}

func (d *DryRun) Recover(context.Context, sheet.Record) {}

func (d *DryRun) Close() {}
