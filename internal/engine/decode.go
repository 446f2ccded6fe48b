package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-garden/internal/config"
	"github.com/tartampluch/go-garden/internal/health"
	"gopkg.in/yaml.v3"
)

// DetectFormat returns the explicit format when set, otherwise guesses it
// from the file extension of location (a path or URL). vCard is the default.
func DetectFormat(format, location string) string {
	if format != "" {
		return format
	}

	p := location
	if u, err := url.Parse(location); err == nil && u.Scheme != "" {
		p = u.Path
	}

	switch strings.ToLower(path.Ext(strings.ReplaceAll(p, `\`, "/"))) {
	case config.ExtJSON:
		return config.FormatJSON
	case config.ExtYAML, config.ExtYML:
		return config.FormatYAML
	case config.ExtVCF, config.ExtVCard:
		return config.FormatVCard
	default:
		return config.FormatVCard
	}
}

// decodeContacts reads every contact of r in the given format.
// The second return value is the number of raw records seen, including skipped ones.
func decodeContacts(ctx context.Context, r io.Reader, format string) ([]health.Contact, int, error) {
	switch format {
	case config.FormatVCard:
		return decodeVCards(ctx, r)
	case config.FormatJSON:
		var rows []map[string]interface{}
		dec := json.NewDecoder(r)
		dec.UseNumber()
		if err := dec.Decode(&rows); err != nil {
			return nil, 0, fmt.Errorf("%s: %w", config.ErrSourceDecode, err)
		}
		return normalizeRows(ctx, rows)
	case config.FormatYAML:
		var rows []map[string]interface{}
		if err := yaml.NewDecoder(r).Decode(&rows); err != nil && !errors.Is(err, io.EOF) {
			return nil, 0, fmt.Errorf("%s: %w", config.ErrSourceDecode, err)
		}
		return normalizeRows(ctx, rows)
	default:
		return nil, 0, fmt.Errorf("%s: %q", config.ErrFormatUnsupport, format)
	}
}

func normalizeRows(ctx context.Context, rows []map[string]interface{}) ([]health.Contact, int, error) {
	contacts := make([]health.Contact, 0, len(rows))
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		if row == nil {
			slog.Warn(config.MsgSkippedRecord, config.LogKeyComponent, config.CompEngine)
			continue
		}
		contacts = append(contacts, health.NormalizeRecord(row))
	}
	return contacts, len(rows), nil
}

// decodeVCards maps each card onto the record field names understood by
// health.NormalizeRecord. Malformed cards are logged and skipped.
func decodeVCards(ctx context.Context, r io.Reader) ([]health.Contact, int, error) {
	decoder := vcard.NewDecoder(r)
	var contacts []health.Contact
	processed := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		processed++
		if err != nil {
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyError, err)
			continue
		}

		contacts = append(contacts, health.NormalizeRecord(cardRecord(card)))
	}
	return contacts, processed, nil
}

// cardRecord flattens the properties of interest into a record.
// Name strategy: FN (formatted) > N (structured).
func cardRecord(card vcard.Card) map[string]interface{} {
	record := make(map[string]interface{})

	if fn := card.PreferredValue(config.VCardFN); fn != "" {
		record[config.FieldsName[0]] = fn
	} else if n := card.Name(); n != nil {
		record[config.FieldsName[0]] = strings.TrimSpace(n.GivenName + " " + n.FamilyName)
	}

	set := func(key, prop string) {
		if v := strings.TrimSpace(card.Value(prop)); v != "" {
			record[key] = v
		}
	}
	set(config.FieldsID[0], config.VCardUID)
	set(config.FieldsBirthday[0], config.VCardBDAY)
	set(config.FieldsLastContact[0], config.VCardLastContact)
	set(config.FieldsFrequencyDays[0], config.VCardFrequencyDays)
	set(config.FieldsImportance[0], config.VCardImportance)

	return record
}
