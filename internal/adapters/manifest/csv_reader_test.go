package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSVCarrierAliases(t *testing.T) {
	// DX-style headers
	input := strings.Join([]string{
		"Consignment Number,Consignment Price,Delivery Post Code,Consignment Weight,Number of Items",
		"DX001,12.50,SW1A 1AA,2.5,1",
		"DX002,8.00,b37 7gt,1.0,2",
	}, "\n")

	res, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, 0, res.Skipped)

	first := res.Records[0]
	assert.Equal(t, "DX001", first.OrderID)
	assert.Equal(t, "SW1A", first.District)
	assert.True(t, first.CourierCost.Equal(decimal.RequireFromString("12.50")))
	assert.InDelta(t, 2.5, first.WeightKg, 1e-9)
	assert.InDelta(t, 0.1, first.VolumeM3, 1e-9)

	second := res.Records[1]
	assert.Equal(t, "B37", second.District)
	assert.Equal(t, 2, second.Quantity)
	// per-unit weight and default volume scale with quantity
	assert.InDelta(t, 2.0, second.WeightKg, 1e-9)
	assert.InDelta(t, 0.2, second.VolumeM3, 1e-9)
}

func TestReadCSVGramsHeuristic(t *testing.T) {
	input := strings.Join([]string{
		"barcode,charge,postcode,weight",
		"A1,5.00,NW10 4UX,1500",
		"A2,6.00,NW10 4UX,250",
	}, "\n")

	res, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, res.Records, 2)

	// max weight 1500 > 500 marks the whole file as grams
	assert.InDelta(t, 1.5, res.Records[0].WeightKg, 1e-9)
	assert.InDelta(t, 0.25, res.Records[1].WeightKg, 1e-9)
}

func TestReadCSVSkipsMalformedRows(t *testing.T) {
	input := strings.Join([]string{
		"order_id,price,postcode",
		"A1,5.00,SW1A 1AA",
		",4.00,SW1A 1AA",      // missing order id
		"A3,not-a-price,EH1 2NG", // unparseable charge
		"A4,3.00,???",         // unparseable postcode
	}, "\n")

	res, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Len(t, res.Records, 1)
	assert.Equal(t, 3, res.Skipped)
}

func TestReadCSVStripsBOMAndCurrency(t *testing.T) {
	input := "\xef\xbb\xbforder_id,price,postcode\nA1,£9.99,E1 6AN\n"

	res, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	assert.Equal(t, "E1", res.Records[0].District)
	assert.True(t, res.Records[0].CourierCost.Equal(decimal.RequireFromString("9.99")))
}

func TestReadCSVMissingRequiredColumn(t *testing.T) {
	input := "order_id,weight\nA1,2.0\n"

	_, err := ReadCSV(strings.NewReader(input))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumns))
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.True(t, errors.Is(err, ErrEmptyManifest))
}

func TestReadFileRejectsLegacyXLS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.xls")
	require.NoError(t, os.WriteFile(path, []byte{0xd0, 0xcf, 0x11, 0xe0}, 0o644))

	_, err := ReadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".xls is not supported")
}

func TestReadFileRejectsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a manifest"), 0o644))

	_, err := ReadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}
