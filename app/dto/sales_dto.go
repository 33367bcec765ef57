package dto

import "github.com/amirphl/leadboard/models"

// SalesRecordRequest is used for both create and partial update; absent fields are untouched on update
type SalesRecordRequest struct {
	Client         Optional[string]  `json:"client"`
	ChatLocationID Optional[string]  `json:"chat_location_id"`
	SaleStatusID   Optional[string]  `json:"sale_status_id"`
	LeadSourceID   Optional[string]  `json:"lead_source_id"`
	DesignerID     Optional[string]  `json:"designer_id"`
	Product        Optional[string]  `json:"product"`
	EstDealValue   Optional[float64] `json:"est_deal_value"`
	EstPayout      Optional[float64] `json:"est_payout"`
}

type ListSalesRecordsRequest struct {
	StatusID string
}

type SalesRecordsResponse struct {
	Records []*models.SalesRecord `json:"records"`
}

type SalesRecordResponse struct {
	Record *models.SalesRecord `json:"record"`
}

type BulkDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,max=500,dive,uuid"`
}

type BulkDeleteResponse struct {
	Success bool  `json:"success"`
	Deleted int64 `json:"deleted"`
}

// SalesExport is an XLSX workbook ready to be sent as an attachment
type SalesExport struct {
	Content  []byte
	Filename string
}
