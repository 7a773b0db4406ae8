// Package logfields holds the canonical slog attribute keys.
package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyListID       = "list_id"
	KeyHashID       = "hash_id"
	KeyBackoffIndex = "backoff_index"
	KeyDelayMS      = "delay_ms"
	KeyInstanceID   = "instance_id"
	KeyMarked       = "marked"
	KeyTotal        = "total"
	KeyPath         = "path"
	KeyError        = "error"
)

func ListID(id int64) slog.Attr         { return slog.Int64(KeyListID, id) }
func HashID(h string) slog.Attr         { return slog.String(KeyHashID, h) }
func BackoffIndex(i int) slog.Attr      { return slog.Int(KeyBackoffIndex, i) }
func Delay(d time.Duration) slog.Attr   { return slog.Int64(KeyDelayMS, d.Milliseconds()) }
func InstanceID(id string) slog.Attr    { return slog.String(KeyInstanceID, id) }
func Marked(n int) slog.Attr            { return slog.Int(KeyMarked, n) }
func Total(n int) slog.Attr             { return slog.Int(KeyTotal, n) }
func Path(p string) slog.Attr           { return slog.String(KeyPath, p) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
