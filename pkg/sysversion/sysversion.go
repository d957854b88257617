package sysversion

import (
	"context"

	"github.com/fox-one/pkg/property"
)

// SysVersionKey key of the ledger schema version
const SysVersionKey = "sysversion"

// ReadSysVersion read the current schema version
func ReadSysVersion(ctx context.Context, property property.Store) (int64, error) {
	v, err := property.Get(ctx, SysVersionKey)
	if err != nil {
		return 0, err
	}
	return v.Int64(), nil
}
