package models

import (
	"time"
)

// TxType is the canonical transaction direction for a filing row.
type TxType string

const (
	TxBuy        TxType = "buy"
	TxSell       TxType = "sell"
	TxTransfer   TxType = "transfer"
	TxNeutral    TxType = "neutral"
	TxCorrection TxType = "correction"
	TxUnknown    TxType = "unknown"
)

// TransactionRow is one itemized buy/sell/transfer leg extracted from a
// document. Price and Amount are optional: HasPrice/HasAmount distinguish
// "zero" from "not stated" (sentinel zeros are ambiguous in filings).
type TransactionRow struct {
	Type      TxType  `json:"type"`
	Price     float64 `json:"price"`
	HasPrice  bool    `json:"has_price"`
	Amount    int64   `json:"amount"`
	HasAmount bool    `json:"has_amount"`

	// Date is the normalized YYYYMMDD form; RawDate keeps the document text.
	Date    string `json:"date,omitempty"`
	RawDate string `json:"date_raw,omitempty"`

	// TransferUID pairs the two sides of one off-market transfer across
	// separate filings. Only set for transfer rows.
	TransferUID string `json:"transfer_uid,omitempty"`
}

// Value returns price*amount, or 0 when either side is absent.
func (r TransactionRow) Value() float64 {
	if !r.HasPrice || !r.HasAmount {
		return 0
	}
	return r.Price * float64(r.Amount)
}

// FilingInfo is the intermediate extraction result for one document.
// It is mutated only during the extraction pass and read-only afterwards.
type FilingInfo struct {
	Source         string `json:"source"` // document filename
	Symbol         string `json:"symbol,omitempty"`
	CompanyName    string `json:"company_name"`
	CompanyNameRaw string `json:"company_name_raw"`

	HolderName    string `json:"holder_name"`
	HolderNameRaw string `json:"holder_name_raw"`
	HolderType    string `json:"holder_type"` // "insider" or "institution"
	HolderSymbol  string `json:"holder_symbol,omitempty"`

	HoldingBefore int64   `json:"holding_before"`
	HoldingAfter  int64   `json:"holding_after"`
	PctBefore     float64 `json:"share_percentage_before"`
	PctAfter      float64 `json:"share_percentage_after"`

	DeclaredType TxType           `json:"transaction_type,omitempty"` // stated in the document
	Transactions []TransactionRow `json:"transactions"`
	Purpose      string           `json:"purpose,omitempty"`
	OwnershipStatus string        `json:"share_ownership_status,omitempty"`

	SkipReason    string   `json:"skip_reason,omitempty"`
	ParseWarnings []string `json:"parse_warnings,omitempty"`
}

// Skipped reports whether extraction decided this document cannot become a record.
func (f *FilingInfo) Skipped() bool { return f.SkipReason != "" }

// AuditFlag describes one anomaly attached to a record. Flags are additive:
// a record may carry several, and none of them reject the record.
type AuditFlag struct {
	Code    string                 `json:"code"`
	Scope   string                 `json:"scope"` // "row" or "tx"
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// FilingRecord is the canonical output handed to the storage collaborator.
// Never mutated after construction.
type FilingRecord struct {
	UID       string `json:"uid"`
	Symbol    string `json:"symbol"` // suffixed form, e.g. "BBRI.JK"
	Timestamp string `json:"timestamp,omitempty"`

	TransactionType TxType `json:"transaction_type"`
	HolderName      string `json:"holder_name"`
	HolderType      string `json:"holder_type"`

	HoldingBefore int64   `json:"holding_before"`
	HoldingAfter  int64   `json:"holding_after"`
	PctBefore     float64 `json:"share_percentage_before"`
	PctAfter      float64 `json:"share_percentage_after"`
	PctTransacted float64 `json:"share_percentage_transaction"`

	Price             float64 `json:"price"` // weighted average over buy/sell legs
	AmountTransacted  int64   `json:"amount_transaction"`
	TransactionValue  float64 `json:"transaction_value"`
	AmountTransferred int64   `json:"amount_transferred,omitempty"`
	ValueTransferred  float64 `json:"value_transferred,omitempty"`

	Transactions []TransactionRow `json:"transactions"`
	Tags         []string         `json:"tags"`
	AuditFlags   []AuditFlag      `json:"audit_flags,omitempty"`

	Sector    string `json:"sector,omitempty"`
	SubSector string `json:"sub_sector,omitempty"`

	SourceFile string `json:"source_file"`
	SourceURL  string `json:"source_url,omitempty"`

	SkipReason string `json:"skip_reason,omitempty"`
	NeedsReview bool  `json:"needs_review"`
}

// AlertSeverity ranks alerts for the bucketing collaborator.
type AlertSeverity string

const (
	SeverityWarning AlertSeverity = "warning"
	SeverityFatal   AlertSeverity = "fatal"
)

// Alert is the side-channel record explaining why a document was skipped or
// flagged. Alerts have a lifecycle independent of FilingRecords.
type Alert struct {
	Stage    string                 `json:"stage"`
	Code     string                 `json:"code"`
	Severity AlertSeverity          `json:"severity"`
	Message  string                 `json:"message"`
	Filename string                 `json:"error_filename"`
	Context  map[string]interface{} `json:"context,omitempty"`
	LoggedAt string                 `json:"timestamp"`
}

// AnnouncementMeta backfills timestamp/source for a document when the filing
// text itself lacks them. Supplied by the ingestion collaborator.
type AnnouncementMeta struct {
	Filename    string    `json:"filename"`
	URL         string    `json:"url"`
	Title       string    `json:"title,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty"`
}

// CompanyEntry is one row of the directory snapshot.
type CompanyEntry struct {
	Symbol         string  `json:"symbol"` // suffixed form, e.g. "BBRI.JK"
	CompanyName    string  `json:"company_name"`
	Sector         string  `json:"sector,omitempty"`
	SubSector      string  `json:"sub_sector,omitempty"`
	LastClosePrice float64 `json:"last_close_price,omitempty"`
}
