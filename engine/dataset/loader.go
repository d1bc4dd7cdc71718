package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/RelioAI/relio-mvp/engine/domain"
)

// Load reads the reliability dataset from a CSV file. The header is validated
// against RequiredColumns before any row is parsed; a missing file surfaces as
// ErrDataUnavailable and a malformed header or cell as ErrSchemaMismatch.
// Load performs no transformation beyond parsing.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrDataUnavailable, path, err)
	}
	defer f.Close()

	table, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return table, nil
}

// Read parses CSV content from r. Split out from Load for testability.
func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // length enforced against the header below

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable header: %v", domain.ErrDataUnavailable, err)
	}
	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var records []domain.VehicleRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", domain.ErrSchemaMismatch, line, err)
		}
		if len(row) < len(header) {
			return nil, fmt.Errorf("%w: row %d has %d fields, header has %d",
				domain.ErrSchemaMismatch, line, len(row), len(header))
		}
		rec, err := parseRow(row, idx)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", domain.ErrSchemaMismatch, line, err)
		}
		records = append(records, rec)
	}
	return &Table{Records: records}, nil
}

func parseRow(row []string, idx map[string]int) (domain.VehicleRecord, error) {
	var rec domain.VehicleRecord
	var err error

	rec.Make = row[idx[ColMake]]
	rec.Model = row[idx[ColModel]]
	rec.ComplaintText = row[idx[ColComplaintText]]
	rec.MaintenanceAction = row[idx[ColMaintenanceAction]]

	if rec.Year, err = strconv.Atoi(row[idx[ColYear]]); err != nil {
		return rec, fmt.Errorf("column %s: %v", ColYear, err)
	}
	if rec.MaintenanceEvents, err = strconv.Atoi(row[idx[ColMaintenanceEvents]]); err != nil {
		return rec, fmt.Errorf("column %s: %v", ColMaintenanceEvents, err)
	}
	if rec.PastFailures, err = strconv.Atoi(row[idx[ColPastFailures]]); err != nil {
		return rec, fmt.Errorf("column %s: %v", ColPastFailures, err)
	}

	floats := []struct {
		col string
		dst *float64
	}{
		{ColMileage, &rec.Mileage},
		{ColAvgTripLengthMiles, &rec.AvgTripLengthMiles},
		{ColSeverityScore, &rec.SeverityScore},
		{ColMaintenanceCostLastYear, &rec.MaintenanceCostLastYear},
		{ColFuelCostLastYear, &rec.FuelCostLastYear},
		{ColHasMechanicalIssue, &rec.HasMechanicalIssue},
	}
	for _, f := range floats {
		if *f.dst, err = strconv.ParseFloat(row[idx[f.col]], 64); err != nil {
			return rec, fmt.Errorf("column %s: %v", f.col, err)
		}
	}
	return rec, nil
}

// Write saves records as CSV in canonical column order. Used by the synthetic
// data generator and by tests.
func Write(path string, records []domain.VehicleRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(RequiredColumns); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Make,
			r.Model,
			strconv.Itoa(r.Year),
			strconv.FormatFloat(r.Mileage, 'f', -1, 64),
			strconv.FormatFloat(r.AvgTripLengthMiles, 'f', 1, 64),
			strconv.Itoa(r.MaintenanceEvents),
			strconv.Itoa(r.PastFailures),
			strconv.FormatFloat(r.SeverityScore, 'f', 2, 64),
			strconv.FormatFloat(r.MaintenanceCostLastYear, 'f', 2, 64),
			strconv.FormatFloat(r.FuelCostLastYear, 'f', 2, 64),
			r.ComplaintText,
			r.MaintenanceAction,
			strconv.FormatFloat(r.HasMechanicalIssue, 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
