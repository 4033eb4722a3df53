// internal/app/store/sheets/client.go

// Package sheets is the remote sync client for the spreadsheet-style
// backend. The backend exposes one HTTP endpoint that dispatches on an
// "action" field in a JSON POST body; rows live in one named partition
// (sheet) per member category.
//
// The client performs no retries and no queuing: a failed call surfaces a
// *SyncError and the mode controller decides what to do with it. Calls are
// not cancellable backend-side once issued — a timed-out call may still have
// been applied, so callers must never assume it did not happen.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/coopstack/memberdocs/internal/domain/models"
)

// Wire actions understood by the backend.
const (
	actionReadAll = "READ_ALL"
	actionAdd     = "ADD"
	actionBulkAdd = "BULK_ADD"
	actionUpdate  = "UPDATE"
	actionDelete  = "DELETE"
)

const requestTimeout = 30 * time.Second

// request is the closed set of fields an action call can carry. Exactly one
// action is set per call; the optional fields belong to specific actions.
type request struct {
	Action    string     `json:"action"`
	SheetName string     `json:"sheetName,omitempty"`
	RowIndex  int        `json:"rowIndex,omitempty"`
	RowData   []string   `json:"rowData,omitempty"`
	RowsData  [][]string `json:"rowsData,omitempty"`
}

// response is the backend's envelope. Status "error" carries Message;
// READ_ALL additionally carries Members.
type response struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Members []remoteRow `json:"members"`
	Count   int         `json:"count"`
}

type remoteRow struct {
	RowData   []any  `json:"rowData"`
	SheetName string `json:"sheetName"`
	RowIndex  int    `json:"rowIndex"`
}

// Client issues action calls against one backend endpoint URL.
type Client struct {
	url        string
	httpClient *http.Client
	log        *zap.Logger
}

// New creates a sheets client for the given endpoint URL.
func New(endpointURL string, logger *zap.Logger) *Client {
	return &Client{
		url:        endpointURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		log:        logger.With(zap.String("component", "sheets_client")),
	}
}

// URL returns the endpoint this client talks to.
func (c *Client) URL() string { return c.url }

// ReadAll fetches every stored row from every partition. The backend creates
// any missing partition (with header metadata) as a side effect, so a
// partition listing zero rows is normal and not an error. Rows that fail to
// decode are skipped and logged; one bad row must not poison a full load.
func (c *Client) ReadAll(ctx context.Context) ([]models.Member, error) {
	resp, err := c.call(ctx, request{Action: actionReadAll})
	if err != nil {
		return nil, err
	}
	members := make([]models.Member, 0, len(resp.Members))
	for _, row := range resp.Members {
		m, err := DecodeRow(row.RowData, row.SheetName, row.RowIndex)
		if err != nil {
			c.log.Warn("skipping undecodable row",
				zap.String("sheet", row.SheetName),
				zap.Int("row", row.RowIndex),
				zap.Error(err))
			continue
		}
		members = append(members, m)
	}
	return members, nil
}

// Add appends one member row to the partition derived from its category.
func (c *Client) Add(ctx context.Context, m models.Member) error {
	rowData, err := EncodeRow(m)
	if err != nil {
		return &SyncError{Action: actionAdd, Err: err}
	}
	_, err = c.call(ctx, request{
		Action:    actionAdd,
		SheetName: m.Category.Sheet(),
		RowData:   rowData,
	})
	return err
}

// BulkAdd appends many members, grouped into one BULK_ADD call per distinct
// target partition. Calls are issued sequentially: the backend serializes
// writers behind a short timed lock and parallel calls would just fight over
// it.
func (c *Client) BulkAdd(ctx context.Context, members []models.Member) error {
	grouped := make(map[string][][]string)
	var order []string
	for _, m := range members {
		sheet := m.Category.Sheet()
		rowData, err := EncodeRow(m)
		if err != nil {
			return &SyncError{Action: actionBulkAdd, Err: err}
		}
		if _, seen := grouped[sheet]; !seen {
			order = append(order, sheet)
		}
		grouped[sheet] = append(grouped[sheet], rowData)
	}
	for _, sheet := range order {
		_, err := c.call(ctx, request{
			Action:    actionBulkAdd,
			SheetName: sheet,
			RowsData:  grouped[sheet],
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Update overwrites the row the member currently occupies. The protocol only
// supports full-row replacement, so the complete row is always sent.
func (c *Client) Update(ctx context.Context, m models.Member) error {
	rowData, err := EncodeRow(m)
	if err != nil {
		return &SyncError{Action: actionUpdate, Err: err}
	}
	_, err = c.call(ctx, request{
		Action:    actionUpdate,
		SheetName: m.Sheet,
		RowIndex:  m.Row,
		RowData:   rowData,
	})
	return err
}

// Delete removes exactly one row. Row positions after it shift by one and
// are stale until the next ReadAll; callers must reload before issuing
// further position-addressed writes to that partition.
func (c *Client) Delete(ctx context.Context, sheet string, row int) error {
	_, err := c.call(ctx, request{
		Action:    actionDelete,
		SheetName: sheet,
		RowIndex:  row,
	})
	return err
}

func (c *Client) call(ctx context.Context, req request) (*response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &SyncError{Action: req.Action, Err: err}
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, &SyncError{Action: req.Action, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &SyncError{Action: req.Action, Err: err}
	}
	defer httpResp.Body.Close()

	var resp response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, &SyncError{Action: req.Action, Err: fmt.Errorf("malformed response: %w", err)}
	}
	if resp.Status == "error" {
		return nil, &SyncError{Action: req.Action, Message: resp.Message}
	}
	return &resp, nil
}
