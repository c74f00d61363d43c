package storage

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Typed failures surfaced to callers. Nothing here retries.
var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrConflict        = errors.New("conflict")
	ErrTransient       = errors.New("transient failure")
)

// classifyError wraps err with the matching typed failure. Errors that fit
// no category are returned wrapped with op only.
func classifyError(op string, err error) error {
	if err == nil {
		return nil
	}
	if kind := errorKind(err); kind != nil {
		return fmt.Errorf("%s: %w: %w", op, kind, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func errorKind(err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUnauthenticated),
		errors.Is(err, ErrConflict), errors.Is(err, ErrTransient):
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, driver.ErrBadConn),
		errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return ErrTransient
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "28000" || pgErr.Code == "28P01":
			return ErrUnauthenticated
		case pgErr.Code == "42501":
			return ErrUnauthenticated
		case pgErr.Code == "23505":
			return ErrConflict
		case pgErr.Code == "40001" || pgErr.Code == "40P01" || pgErr.Code == "57P01" || pgErr.Code == "53300":
			return ErrTransient
		case strings.HasPrefix(pgErr.Code, "08"):
			return ErrTransient
		}
		return nil
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrTransient
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return ErrTransient
	}
	return nil
}
