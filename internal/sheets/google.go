package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// Google talks to one spreadsheet through the Sheets v4 values API.
type Google struct {
	svc           *gsheets.Service
	spreadsheetID string
}

// NewGoogle builds a client for spreadsheetID. With an empty
// credentialsFile the client falls back to application default
// credentials.
func NewGoogle(ctx context.Context, spreadsheetID, credentialsFile string) (*Google, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}
	opts := []option.ClientOption{option.WithScopes(gsheets.SpreadsheetsScope)}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Google{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func (g *Google) Get(ctx context.Context, rng string) ([][]string, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", rng, err)
	}
	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprint(v)
		}
		rows[i] = cells
	}
	return rows, nil
}

func (g *Google) Update(ctx context.Context, rng string, rows [][]string) error {
	vr := &gsheets.ValueRange{Values: toValues(rows)}
	_, err := g.svc.Spreadsheets.Values.Update(g.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}

func (g *Google) Append(ctx context.Context, rng string, rows [][]string) error {
	vr := &gsheets.ValueRange{Values: toValues(rows)}
	_, err := g.svc.Spreadsheets.Values.Append(g.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append %s: %w", rng, err)
	}
	return nil
}

func (g *Google) Clear(ctx context.Context, rng string) error {
	_, err := g.svc.Spreadsheets.Values.Clear(g.spreadsheetID, rng, &gsheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}
	return nil
}

func toValues(rows [][]string) [][]interface{} {
	out := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, c := range row {
			cells[j] = c
		}
		out[i] = cells
	}
	return out
}
