package export

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/piwi3910/BinPack/internal/model"
)

func buildLabelsTestCase() (model.Request, model.PackingResult) {
	req := model.Request{
		Items: []model.Item{
			{ID: "a1", Label: "Side Panel", Width: 600, Length: 400},
			{ID: "b2", Label: "Top", Width: 100, Length: 500},
			{ID: "c3", Label: "Left Over", Width: 900, Length: 900},
		},
		Bin: model.NewBin(1000, 500),
	}
	result := model.PackingResult{
		RunID: "run-42",
		PackedItems: []model.PackedItem{
			{Index: 0, Place: model.Placement{X: 0, Y: 0, Width: 600, Length: 400}},
			{Index: 1, Place: model.Placement{X: 600, Y: 0, Width: 500, Length: 100}},
		},
		RemainingItems: []int{2},
	}
	return req, result
}

func TestExportLabels_CreatesFile(t *testing.T) {
	req, result := buildLabelsTestCase()
	path := filepath.Join(t.TempDir(), "labels.pdf")

	if err := ExportLabels(path, req, result); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}
	assertPDF(t, path)
}

func TestExportLabels_NoPackedItems(t *testing.T) {
	req, _ := buildLabelsTestCase()
	result := model.PackingResult{RemainingItems: []int{0, 1, 2}}

	if err := ExportLabels(filepath.Join(t.TempDir(), "labels.pdf"), req, result); err == nil {
		t.Fatal("expected error when nothing was packed")
	}
}

func TestCollectLabelInfos(t *testing.T) {
	req, result := buildLabelsTestCase()

	labels, err := CollectLabelInfos(req, result)
	if err != nil {
		t.Fatalf("CollectLabelInfos returned error: %v", err)
	}
	if len(labels) != 2 {
		t.Fatalf("expected 2 labels, got %d", len(labels))
	}

	first := labels[0]
	if first.Label != "Side Panel" || first.ItemID != "a1" || first.RunID != "run-42" {
		t.Errorf("unexpected first label %+v", first)
	}
	if first.Rotated {
		t.Error("expected first item unrotated")
	}

	second := labels[1]
	if !second.Rotated {
		t.Error("expected second item rotated")
	}
	if second.Width != 100 || second.Length != 500 {
		t.Errorf("expected the item's own dimensions 100x500, got %dx%d", second.Width, second.Length)
	}
	if second.X != 600 || second.Y != 0 {
		t.Errorf("expected position (600, 0), got (%d, %d)", second.X, second.Y)
	}
}

func TestCollectLabelInfos_IndexOutOfRange(t *testing.T) {
	req, _ := buildLabelsTestCase()
	result := model.PackingResult{PackedItems: []model.PackedItem{{Index: 7}}}

	if _, err := CollectLabelInfos(req, result); err == nil {
		t.Fatal("expected error for an out-of-range index")
	}
}

func TestLabelInfo_QRPayload(t *testing.T) {
	info := LabelInfo{Index: 3, ItemID: "x9", Label: "Crate", Width: 300, Length: 200, X: 50, Y: 100, Rotated: true}

	data, err := json.Marshal(info)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	for _, key := range []string{"index", "id", "label", "width", "length", "x", "y", "rotated"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("expected key %q in QR payload %s", key, data)
		}
	}
	if _, ok := fields["run"]; ok {
		t.Errorf("expected empty run ID to be omitted, got %s", data)
	}
}

func TestExportLabels_ManyItems(t *testing.T) {
	// 35 labels spill onto a second page
	items := make([]model.Item, 35)
	packed := make([]model.PackedItem, 35)
	for i := range items {
		items[i] = model.Item{Label: "Item", Width: 10, Length: 10}
		packed[i] = model.PackedItem{Index: i, Place: model.Placement{X: int64(i * 10), Width: 10, Length: 10}}
	}
	req := model.Request{Items: items, Bin: model.NewBin(350, 10)}
	result := model.PackingResult{PackedItems: packed, RemainingItems: []int{}}

	path := filepath.Join(t.TempDir(), "many_labels.pdf")
	if err := ExportLabels(path, req, result); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}
	assertPDF(t, path)
}
