package businessflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/amirphl/leadboard/app/dto"
	"github.com/amirphl/leadboard/models"
	"github.com/amirphl/leadboard/repository"
	"github.com/amirphl/leadboard/utils"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const salesSheetName = "Sales"

var salesExportHeader = []any{
	"Client", "Chat Location", "Status", "Lead Source", "Designer", "Product",
	"Est. Deal Value", "Est. Payout", "Est. Earnings", "Created At",
}

// SalesFlow backs the sales records grid
type SalesFlow interface {
	ListRecords(ctx context.Context, req *dto.ListSalesRecordsRequest) (*dto.SalesRecordsResponse, error)
	Lookups(ctx context.Context) (*models.SalesLookups, error)
	CreateRecord(ctx context.Context, req *dto.SalesRecordRequest) (*dto.SalesRecordResponse, error)
	UpdateRecord(ctx context.Context, id string, req *dto.SalesRecordRequest) (*dto.SalesRecordResponse, error)
	DeleteRecord(ctx context.Context, id string) error
	BulkDelete(ctx context.Context, req *dto.BulkDeleteRequest) (*dto.BulkDeleteResponse, error)
	Export(ctx context.Context, req *dto.ListSalesRecordsRequest) (*dto.SalesExport, error)
}

// SalesFlowImpl implements SalesFlow
type SalesFlowImpl struct {
	recordRepo repository.SalesRecordRepository
	lookupRepo repository.SalesLookupRepository
}

func NewSalesFlow(recordRepo repository.SalesRecordRepository, lookupRepo repository.SalesLookupRepository) SalesFlow {
	return &SalesFlowImpl{recordRepo: recordRepo, lookupRepo: lookupRepo}
}

func (f *SalesFlowImpl) filter(req *dto.ListSalesRecordsRequest) (models.SalesRecordFilter, error) {
	var filter models.SalesRecordFilter
	if req == nil {
		return filter, nil
	}
	statusID, err := utils.ParseUUIDPtr(strings.TrimSpace(req.StatusID))
	if err != nil {
		return filter, validationError("Invalid status_id")
	}
	filter.SaleStatusID = statusID
	return filter, nil
}

func (f *SalesFlowImpl) ListRecords(ctx context.Context, req *dto.ListSalesRecordsRequest) (*dto.SalesRecordsResponse, error) {
	filter, err := f.filter(req)
	if err != nil {
		return nil, err
	}
	rows, err := f.recordRepo.ListWithLookups(ctx, filter)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []*models.SalesRecord{}
	}
	return &dto.SalesRecordsResponse{Records: rows}, nil
}

func (f *SalesFlowImpl) Lookups(ctx context.Context) (*models.SalesLookups, error) {
	return f.lookupRepo.All(ctx)
}

// lookupRef parses an optional lookup id and checks it exists in its table
func (f *SalesFlowImpl) lookupRef(ctx context.Context, kind repository.LookupKind, field string, v dto.Optional[string]) (*uuid.UUID, error) {
	id, err := parseOptionalUUID(v.Value)
	if err != nil {
		return nil, NewBusinessErrorf(CodeInvalidLookup, "Invalid %s", nil, field)
	}
	if id == nil {
		return nil, nil
	}
	ok, err := f.lookupRepo.Exists(ctx, kind, *id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, NewBusinessErrorf(CodeInvalidLookup, "Invalid %s", nil, field)
	}
	return id, nil
}

// apply copies every set field onto record and reports whether anything was set
func (f *SalesFlowImpl) apply(ctx context.Context, record *models.SalesRecord, req *dto.SalesRecordRequest) (bool, error) {
	changed := false

	if req.Client.Set {
		record.Client = strings.TrimSpace(utils.Deref(req.Client.Value))
		changed = true
	}
	if req.Product.Set {
		record.Product = strings.TrimSpace(utils.Deref(req.Product.Value))
		changed = true
	}
	if req.EstDealValue.Set {
		record.EstDealValue = req.EstDealValue.Value
		changed = true
	}
	if req.EstPayout.Set {
		record.EstPayout = req.EstPayout.Value
		changed = true
	}

	refs := []struct {
		kind   repository.LookupKind
		field  string
		value  dto.Optional[string]
		target **uuid.UUID
	}{
		{repository.LookupChatLocation, "chat_location_id", req.ChatLocationID, &record.ChatLocationID},
		{repository.LookupSaleStatus, "sale_status_id", req.SaleStatusID, &record.SaleStatusID},
		{repository.LookupLeadSource, "lead_source_id", req.LeadSourceID, &record.LeadSourceID},
		{repository.LookupDesigner, "designer_id", req.DesignerID, &record.DesignerID},
	}
	for _, ref := range refs {
		if !ref.value.Set {
			continue
		}
		id, err := f.lookupRef(ctx, ref.kind, ref.field, ref.value)
		if err != nil {
			return false, err
		}
		*ref.target = id
		changed = true
	}

	return changed, nil
}

func (f *SalesFlowImpl) CreateRecord(ctx context.Context, req *dto.SalesRecordRequest) (*dto.SalesRecordResponse, error) {
	record := &models.SalesRecord{}
	if _, err := f.apply(ctx, record, req); err != nil {
		return nil, err
	}
	record.RecomputeEarnings()

	if err := f.recordRepo.Save(ctx, record); err != nil {
		return nil, err
	}
	return f.reload(ctx, record.ID)
}

func (f *SalesFlowImpl) reload(ctx context.Context, id uuid.UUID) (*dto.SalesRecordResponse, error) {
	record, err := f.recordRepo.ByIDWithLookups(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, NewBusinessError(CodeSalesRecordNotFound, "Sales record not found", ErrSalesRecordNotFound)
	}
	return &dto.SalesRecordResponse{Record: record}, nil
}

func (f *SalesFlowImpl) UpdateRecord(ctx context.Context, id string, req *dto.SalesRecordRequest) (*dto.SalesRecordResponse, error) {
	recordID, err := uuid.Parse(id)
	if err != nil {
		return nil, validationError("Invalid sales record id")
	}

	record, err := f.recordRepo.ByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, NewBusinessError(CodeSalesRecordNotFound, "Sales record not found", ErrSalesRecordNotFound)
	}

	changed, err := f.apply(ctx, record, req)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, NewBusinessError(CodeNoValidFields, "No valid fields to update", nil)
	}

	record.UpdatedAt = utils.UTCNow()
	if err := f.recordRepo.Update(ctx, record); err != nil {
		return nil, err
	}
	return f.reload(ctx, recordID)
}

func (f *SalesFlowImpl) DeleteRecord(ctx context.Context, id string) error {
	recordID, err := uuid.Parse(id)
	if err != nil {
		return validationError("Invalid sales record id")
	}
	deleted, err := f.recordRepo.DeleteByIDs(ctx, []uuid.UUID{recordID})
	if err != nil {
		return err
	}
	if deleted == 0 {
		return NewBusinessError(CodeSalesRecordNotFound, "Sales record not found", ErrSalesRecordNotFound)
	}
	return nil
}

func (f *SalesFlowImpl) BulkDelete(ctx context.Context, req *dto.BulkDeleteRequest) (*dto.BulkDeleteResponse, error) {
	if len(req.IDs) == 0 {
		return nil, validationError("ids must not be empty")
	}
	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			return nil, validationError(fmt.Sprintf("Invalid id: %s", raw))
		}
		ids = append(ids, id)
	}

	deleted, err := f.recordRepo.DeleteByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &dto.BulkDeleteResponse{Success: true, Deleted: deleted}, nil
}

func (f *SalesFlowImpl) Export(ctx context.Context, req *dto.ListSalesRecordsRequest) (*dto.SalesExport, error) {
	list, err := f.ListRecords(ctx, req)
	if err != nil {
		return nil, err
	}

	xl := excelize.NewFile()
	defer xl.Close()

	if err := xl.SetSheetName(xl.GetSheetName(0), salesSheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	header := salesExportHeader
	if err := xl.SetSheetRow(salesSheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	if style, err := xl.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = xl.SetRowStyle(salesSheetName, 1, 1, style)
	}

	for i, r := range list.Records {
		row := []any{
			r.Client,
			lookupName(r.ChatLocation),
			lookupName(r.SaleStatus),
			lookupName(r.LeadSource),
			lookupName(r.Designer),
			r.Product,
			amount(r.EstDealValue),
			amount(r.EstPayout),
			amount(r.EstEarnings),
			r.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := xl.SetSheetRow(salesSheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	_ = xl.SetColWidth(salesSheetName, "A", "J", 18)

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	return &dto.SalesExport{
		Content:  buf.Bytes(),
		Filename: fmt.Sprintf("sales-records-%s.xlsx", utils.UTCNow().Format("20060102")),
	}, nil
}

type namedLookup interface {
	*models.ChatLocation | *models.SaleStatus | *models.LeadSource | *models.Designer
}

func lookupName[T namedLookup](v T) string {
	switch l := any(v).(type) {
	case *models.ChatLocation:
		if l != nil {
			return l.Name
		}
	case *models.SaleStatus:
		if l != nil {
			return l.Name
		}
	case *models.LeadSource:
		if l != nil {
			return l.Name
		}
	case *models.Designer:
		if l != nil {
			return l.Name
		}
	}
	return ""
}

func amount(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
