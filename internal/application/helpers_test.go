package application_test

import (
	"os"
	"testing"

	"github.com/plcqa/plcqa/internal/domain"
	"github.com/stretchr/testify/require"
)

func fileSize(t *testing.T, path string) int64 {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info.Size()
}

func sizeOf(t *testing.T, r *domain.Report, path string) int64 {
	t.Helper()
	for _, u := range r.Units {
		if u.Path == path {
			return u.Size
		}
	}
	t.Fatalf("unit %s not in report", path)
	return 0
}
