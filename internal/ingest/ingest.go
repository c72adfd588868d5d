// Package ingest turns booking-platform CSV exports into raw records.
package ingest

import (
	"fmt"
	"io"

	"github.com/pawprint-labs/pawprint/internal/ingest/pawsoft"
	"github.com/pawprint-labs/pawprint/internal/raw"
)

// Platform identifies the booking platform an export came from.
type Platform string

const (
	PlatformPawSoft Platform = "pawsoft"
)

// AppointmentParser reads one appointment export into raw records.
type AppointmentParser interface {
	ParseAppointments(r io.Reader) ([]raw.Appointment, error)
}

// SalesParser reads one sales export into raw records.
type SalesParser interface {
	ParseSales(r io.Reader) ([]raw.Transaction, error)
}

type Service struct {
	pawsoft *pawsoft.Parser
}

func NewService() *Service {
	return &Service{
		pawsoft: pawsoft.NewParser(),
	}
}

func (s *Service) Appointments(platform Platform, r io.Reader) ([]raw.Appointment, error) {
	switch platform {
	case PlatformPawSoft:
		return s.pawsoft.ParseAppointments(r)
	default:
		return nil, fmt.Errorf("unknown platform: %s", platform)
	}
}

func (s *Service) Sales(platform Platform, r io.Reader) ([]raw.Transaction, error) {
	switch platform {
	case PlatformPawSoft:
		return s.pawsoft.ParseSales(r)
	default:
		return nil, fmt.Errorf("unknown platform: %s", platform)
	}
}
