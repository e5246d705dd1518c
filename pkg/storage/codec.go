package storage

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/platinummonkey/subdesk/pkg/plans"
	"github.com/platinummonkey/subdesk/pkg/subscribers"
)

const (
	// FieldSeparator joins the fields of a record line. It is not escaped:
	// a field containing it corrupts the row on re-read.
	FieldSeparator = "|"
	fieldCount     = 4
)

// ErrMalformedLine is returned by DecodeLine for lines that do not hold a record
var ErrMalformedLine = errors.New("malformed record line")

// EncodeLine serializes a subscriber as name|phoneNumber|planName|dataUsed
func EncodeLine(s *subscribers.Subscriber) string {
	return strings.Join([]string{
		s.Name(),
		s.PhoneNumber(),
		s.PlanName(),
		formatUsage(s.DataUsed()),
	}, FieldSeparator)
}

// DecodeLine parses a record line. The plan name is resolved through the
// catalog, falling back to its default plan.
func DecodeLine(line string, catalog *plans.Catalog) (*subscribers.Subscriber, error) {
	parts := strings.Split(line, FieldSeparator)
	if len(parts) != fieldCount {
		return nil, fmt.Errorf("%w: expected %d fields, got %d", ErrMalformedLine, fieldCount, len(parts))
	}

	used, err := parseUsage(parts[3])
	if err != nil {
		return nil, err
	}

	return buildSubscriber(parts[0], parts[1], parts[2], used, catalog)
}

// Encode writes one line per subscriber, in order
func Encode(w io.Writer, subs []*subscribers.Subscriber) error {
	bw := bufio.NewWriter(w)
	for _, s := range subs {
		if _, err := bw.WriteString(EncodeLine(s) + "\n"); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush records: %w", err)
	}
	return nil
}

// Decode reads record lines until EOF. Malformed lines are dropped; skipped
// reports how many. Lines have no length limit.
func Decode(r io.Reader, catalog *plans.Catalog) (subs []*subscribers.Subscriber, skipped int, err error) {
	br := bufio.NewReader(r)

	for {
		line, readErr := br.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return nil, skipped, fmt.Errorf("failed to read records: %w", readErr)
		}

		line = strings.TrimRight(line, "\r\n")
		if line != "" {
			s, err := DecodeLine(line, catalog)
			if err != nil {
				skipped++
			} else {
				subs = append(subs, s)
			}
		}

		if readErr == io.EOF {
			return subs, skipped, nil
		}
	}
}

// decodeLines is Decode for backends that store lines individually
func decodeLines(lines []string, catalog *plans.Catalog) (subs []*subscribers.Subscriber, skipped int) {
	for _, line := range lines {
		s, err := DecodeLine(line, catalog)
		if err != nil {
			skipped++
			continue
		}
		subs = append(subs, s)
	}
	return subs, skipped
}

func buildSubscriber(name, phone, planName string, used float64, catalog *plans.Catalog) (*subscribers.Subscriber, error) {
	plan, _ := catalog.Lookup(planName)

	s, err := subscribers.New(subscribers.Params{
		Name:         name,
		PhoneNumber:  phone,
		Plan:         plan,
		InitialUsage: used,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedLine, err)
	}
	return s, nil
}

func formatUsage(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseUsage(field string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid data usage %q", ErrMalformedLine, field)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: invalid data usage %q", ErrMalformedLine, field)
	}
	return v, nil
}
