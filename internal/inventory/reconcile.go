// Package inventory maintains the stock book and reconciles sale lines
// against it.
package inventory

import "strings"

// SaleLine is one sold line presented for reconciliation.
type SaleLine struct {
	LineID  string
	Name    string
	Barcode string
	Qty     int
}

// Record is a stock snapshot entry used during matching.
type Record struct {
	ID       string
	Name     string
	Barcode  string
	StockQty int
}

// Decrement is the accumulated quantity to subtract from one record.
type Decrement struct {
	RecordID string `json:"recordId"`
	Name     string `json:"name"`
	Qty      int    `json:"qty"`
}

// Unmatched describes a sale line that found no inventory record.
type Unmatched struct {
	LineID string `json:"lineId"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// OversellWarning reports a decrement that exceeded the available stock.
// The decrement itself floors at zero rather than failing the sale.
type OversellWarning struct {
	RecordID  string `json:"recordId"`
	Name      string `json:"name"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// Result carries the outcome of reconciling one sale against a snapshot.
type Result struct {
	Decrements []Decrement       `json:"decrements"`
	Unmatched  []Unmatched       `json:"unmatched,omitempty"`
	Warnings   []OversellWarning `json:"stockWarnings,omitempty"`
}

// Reconcile matches sale lines to inventory records and accumulates the
// stock decrements. An exact barcode match always wins; lines without a
// barcode hit fall back to a case-insensitive name match. Lines matching
// nothing are reported, never rejected, so a sale can still complete with
// ad hoc items. Lines with a non-positive quantity are ignored.
func Reconcile(records []Record, lines []SaleLine) Result {
	byBarcode := make(map[string]int, len(records))
	byName := make(map[string]int, len(records))
	for i, r := range records {
		if r.Barcode != "" {
			byBarcode[r.Barcode] = i
		}
		key := strings.ToLower(strings.TrimSpace(r.Name))
		if key != "" {
			if _, taken := byName[key]; !taken {
				byName[key] = i
			}
		}
	}

	requested := make(map[int]int)
	order := make([]int, 0, len(lines))
	var result Result
	for _, line := range lines {
		if line.Qty <= 0 {
			continue
		}
		idx, ok := matchLine(line, byBarcode, byName)
		if !ok {
			result.Unmatched = append(result.Unmatched, Unmatched{
				LineID: line.LineID,
				Name:   line.Name,
				Reason: "no_match",
			})
			continue
		}
		if _, seen := requested[idx]; !seen {
			order = append(order, idx)
		}
		requested[idx] += line.Qty
	}

	for _, idx := range order {
		record := records[idx]
		qty := requested[idx]
		if qty > record.StockQty {
			result.Warnings = append(result.Warnings, OversellWarning{
				RecordID:  record.ID,
				Name:      record.Name,
				Requested: qty,
				Available: record.StockQty,
			})
		}
		result.Decrements = append(result.Decrements, Decrement{
			RecordID: record.ID,
			Name:     record.Name,
			Qty:      qty,
		})
	}
	return result
}

func matchLine(line SaleLine, byBarcode, byName map[string]int) (int, bool) {
	if line.Barcode != "" {
		if idx, ok := byBarcode[line.Barcode]; ok {
			return idx, true
		}
	}
	key := strings.ToLower(strings.TrimSpace(line.Name))
	if key == "" {
		return 0, false
	}
	idx, ok := byName[key]
	return idx, ok
}
