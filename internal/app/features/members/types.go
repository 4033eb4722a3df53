// internal/app/features/members/types.go
package members

import (
	"fmt"
	"strings"
	"time"

	"github.com/coopstack/memberdocs/internal/app/system/importutil"
	"github.com/coopstack/memberdocs/internal/domain/models"
)

// detailsRequest is the body for creating a member and for editing its
// details. Category accepts either the canonical value ("external_staff") or
// a display label ("External Staff").
type detailsRequest struct {
	Name             string `json:"name"`
	Category         string `json:"category"`
	RegistrationDate string `json:"registrationDate"`
	Issuer           string `json:"issuer"`
}

func (req *detailsRequest) parse() (name string, cat models.Category, regDate time.Time, issuer string, err error) {
	name = strings.TrimSpace(req.Name)
	if name == "" {
		return "", "", time.Time{}, "", fmt.Errorf("name is required")
	}
	cat = models.Category(strings.TrimSpace(req.Category))
	if !cat.Valid() {
		parsed, ok := models.ParseCategoryLabel(req.Category)
		if !ok {
			return "", "", time.Time{}, "", fmt.Errorf("unrecognized category %q", req.Category)
		}
		cat = parsed
	}
	regDate, err = importutil.ParseFlexibleDate(req.RegistrationDate)
	if err != nil {
		return "", "", time.Time{}, "", fmt.Errorf("bad registration date %q", req.RegistrationDate)
	}
	return name, cat, regDate, strings.TrimSpace(req.Issuer), nil
}

// documentsRequest is the body for replacing a member's document flags.
type documentsRequest struct {
	Documents map[string]bool `json:"documents"`
}

// listResponse wraps the member list with collection-level metadata.
type listResponse struct {
	Members []models.Member `json:"members"`
	Total   int             `json:"total"`
	Online  bool            `json:"online"`
}

// checklistItem describes one required document for a category.
type checklistItem struct {
	Name      string `json:"name"`
	Mandatory bool   `json:"mandatory"`
	Checked   bool   `json:"checked"`
}

// importResponse reports the outcome of a bulk import.
type importResponse struct {
	Scanned  int                  `json:"scanned"`
	Added    int                  `json:"added"`
	Updated  int                  `json:"updated"`
	Rejected []importutil.RowError `json:"rejected"`
}
