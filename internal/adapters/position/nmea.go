package position

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"shelter-finder-service/internal/domain"
	"strings"
	"time"

	"github.com/adrianmo/go-nmea"
	"github.com/tarm/serial"
	"go.uber.org/zap"
)

var ErrNoFix = errors.New("no valid GPS fix found")

// Opener returns a fresh NMEA stream for one position lookup.
type Opener func() (io.ReadCloser, error)

// NMEASource reads NMEA 0183 sentences and reports the first valid fix
// from a GGA or RMC sentence.
type NMEASource struct {
	open   Opener
	logger *zap.Logger
}

func NewNMEASource(open Opener, logger *zap.Logger) *NMEASource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NMEASource{open: open, logger: logger}
}

// NewNMEAFileSource replays sentences from a capture file.
func NewNMEAFileSource(path string, logger *zap.Logger) *NMEASource {
	return NewNMEASource(func() (io.ReadCloser, error) {
		return os.Open(path)
	}, logger)
}

// NewSerialNMEASource reads from a GPS receiver on a serial port.
func NewSerialNMEASource(port string, baud int, logger *zap.Logger) *NMEASource {
	return NewNMEASource(func() (io.ReadCloser, error) {
		return serial.OpenPort(&serial.Config{Name: port, Baud: baud, ReadTimeout: 5 * time.Second})
	}, logger)
}

func (s *NMEASource) CurrentPosition(ctx context.Context) (domain.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return domain.Coordinate{}, err
	}

	rc, err := s.open()
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("read position: open nmea stream: %w", err)
	}
	defer rc.Close()

	// Unblock a pending Read when the caller gives up.
	stop := context.AfterFunc(ctx, func() { _ = rc.Close() })
	defer stop()

	scanner := bufio.NewScanner(rc)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "$") {
			continue
		}

		sentence, err := nmea.Parse(line)
		if err != nil {
			s.logger.Debug("skip nmea sentence", zap.String("line", line), zap.Error(err))
			continue
		}

		c, ok := fix(sentence)
		if !ok {
			continue
		}
		if err := c.Validate(); err != nil {
			s.logger.Debug("skip nmea fix", zap.String("line", line), zap.Error(err))
			continue
		}
		return c, nil
	}

	if err := ctx.Err(); err != nil {
		return domain.Coordinate{}, err
	}
	if err := scanner.Err(); err != nil {
		return domain.Coordinate{}, fmt.Errorf("read position: %w", err)
	}

	return domain.Coordinate{}, ErrNoFix
}

func fix(sentence nmea.Sentence) (domain.Coordinate, bool) {
	switch v := sentence.(type) {
	case nmea.GGA:
		if v.FixQuality == nmea.Invalid {
			return domain.Coordinate{}, false
		}
		return domain.Coordinate{Latitude: v.Latitude, Longitude: v.Longitude}, true
	case nmea.RMC:
		if v.Validity != nmea.ValidRMC {
			return domain.Coordinate{}, false
		}
		return domain.Coordinate{Latitude: v.Latitude, Longitude: v.Longitude}, true
	default:
		return domain.Coordinate{}, false
	}
}
