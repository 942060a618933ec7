package transform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableprep/internal/dataset"
)

func encodeConfig(method EncodingMethod) Config {
	return Config{ScalingMethod: ScaleNone, EncodingMethod: method}
}

func TestLabelEncoding(t *testing.T) {
	engine := NewEngine(testLogger(), encodeConfig(EncodeLabel))

	tbl := buildTable(t, dataset.NewColumn("color", []any{"red", "blue", "red", "green"}))
	out, result, err := engine.FitTransform(context.Background(), tbl, "")
	require.NoError(t, err)

	color, _ := out.Column("color")
	// Codes follow first-seen order.
	assert.Equal(t, []any{int64(0), int64(1), int64(0), int64(2)}, color.Values)

	params := result.EncodeParams["color"]
	assert.Equal(t, EncodeLabel, params.Method)
	assert.Equal(t, map[string]int64{"red": 0, "blue": 1, "green": 2}, params.Mapping)
}

func TestOrdinalEncoding(t *testing.T) {
	engine := NewEngine(testLogger(), encodeConfig(EncodeOrdinal))

	tbl := buildTable(t, dataset.NewColumn("color", []any{"red", "blue", "red", "green"}))
	out, result, err := engine.FitTransform(context.Background(), tbl, "")
	require.NoError(t, err)

	color, _ := out.Column("color")
	// Codes follow sorted category order: blue 0, green 1, red 2.
	assert.Equal(t, []any{int64(2), int64(0), int64(2), int64(1)}, color.Values)
	assert.Equal(t, EncodeOrdinal, result.EncodeParams["color"].Method)
}

func TestOneHotEncoding(t *testing.T) {
	engine := NewEngine(testLogger(), encodeConfig(EncodeOneHot))

	tbl := buildTable(t, dataset.NewColumn("city", []any{"b", "a", "b"}))
	out, result, err := engine.FitTransform(context.Background(), tbl, "")
	require.NoError(t, err)

	assert.False(t, out.HasColumn("city"))
	cityA, ok := out.Column("city_a")
	require.True(t, ok)
	cityB, ok := out.Column("city_b")
	require.True(t, ok)
	assert.Equal(t, []any{false, true, false}, cityA.Values)
	assert.Equal(t, []any{true, false, true}, cityB.Values)

	params := result.EncodeParams["city"]
	assert.Equal(t, EncodeOneHot, params.Method)
	assert.Equal(t, []string{"a", "b"}, params.Categories)
	assert.Contains(t, result.ColumnsDropped, "city")
	assert.Contains(t, result.ColumnsAdded, "city_a")
	assert.Contains(t, result.ColumnsAdded, "city_b")
}

func TestOneHotFallsBackToLabel(t *testing.T) {
	cfg := encodeConfig(EncodeOneHot)
	cfg.MaxCategories = 2
	engine := NewEngine(testLogger(), cfg)

	tbl := buildTable(t, dataset.NewColumn("city", []any{"x", "y", "z"}))
	out, result, err := engine.FitTransform(context.Background(), tbl, "")
	require.NoError(t, err)

	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "falling back")
	assert.Equal(t, EncodeLabel, result.EncodeParams["city"].Method)

	city, _ := out.Column("city")
	assert.Equal(t, []any{int64(0), int64(1), int64(2)}, city.Values)
}

func TestFrequencyEncoding(t *testing.T) {
	engine := NewEngine(testLogger(), encodeConfig(EncodeFrequency))

	tbl := buildTable(t, dataset.NewColumn("city", []any{"a", "a", "b", "a"}))
	out, result, err := engine.FitTransform(context.Background(), tbl, "")
	require.NoError(t, err)

	city, _ := out.Column("city")
	assert.Equal(t, []any{0.75, 0.75, 0.25, 0.75}, city.Values)
	assert.Equal(t, map[string]float64{"a": 0.75, "b": 0.25}, result.EncodeParams["city"].Frequencies)
}

func TestTargetEncoding(t *testing.T) {
	engine := NewEngine(testLogger(), encodeConfig(EncodeTarget))

	tbl := buildTable(t,
		dataset.NewColumn("city", []any{"x", "x", "y"}),
		dataset.NewColumn("price", []any{10.0, 20.0, 30.0}),
	)
	out, result, err := engine.FitTransform(context.Background(), tbl, "price")
	require.NoError(t, err)

	city, _ := out.Column("city")
	assert.Equal(t, []any{15.0, 15.0, 30.0}, city.Values)

	price, _ := out.Column("price")
	assert.Equal(t, []any{10.0, 20.0, 30.0}, price.Values)
	assert.Equal(t, map[string]float64{"x": 15.0, "y": 30.0}, result.EncodeParams["city"].TargetMeans)
}

func TestTargetEncodingSkippedWithoutTarget(t *testing.T) {
	engine := NewEngine(testLogger(), encodeConfig(EncodeTarget))

	tbl := buildTable(t, dataset.NewColumn("city", []any{"x", "y"}))
	out, result, err := engine.FitTransform(context.Background(), tbl, "missing")
	require.NoError(t, err)

	city, _ := out.Column("city")
	assert.Equal(t, []any{"x", "y"}, city.Values)
	assert.Empty(t, result.EncodeParams)
}

func TestEncodingKeepsNulls(t *testing.T) {
	engine := NewEngine(testLogger(), encodeConfig(EncodeLabel))

	tbl := buildTable(t, dataset.NewColumn("color", []any{"red", nil, "red"}))
	out, _, err := engine.FitTransform(context.Background(), tbl, "")
	require.NoError(t, err)

	color, _ := out.Column("color")
	assert.Equal(t, []any{int64(0), nil, int64(0)}, color.Values)
}

func TestLabelReplayMapsUnseenToNull(t *testing.T) {
	engine := NewEngine(testLogger(), encodeConfig(EncodeLabel))

	fitTbl := buildTable(t, dataset.NewColumn("color", []any{"red", "blue"}))
	_, result, err := engine.FitTransform(context.Background(), fitTbl, "")
	require.NoError(t, err)

	newTbl := buildTable(t, dataset.NewColumn("color", []any{"red", "purple"}))
	out, err := engine.Transform(context.Background(), newTbl, result)
	require.NoError(t, err)

	color, _ := out.Column("color")
	assert.Equal(t, []any{int64(0), nil}, color.Values)
}

func TestOneHotReplayMapsUnseenToAllFalse(t *testing.T) {
	engine := NewEngine(testLogger(), encodeConfig(EncodeOneHot))

	fitTbl := buildTable(t, dataset.NewColumn("city", []any{"a", "b"}))
	_, result, err := engine.FitTransform(context.Background(), fitTbl, "")
	require.NoError(t, err)

	newTbl := buildTable(t, dataset.NewColumn("city", []any{"a", "c"}))
	out, err := engine.Transform(context.Background(), newTbl, result)
	require.NoError(t, err)

	cityA, _ := out.Column("city_a")
	cityB, _ := out.Column("city_b")
	assert.Equal(t, []any{true, false}, cityA.Values)
	assert.Equal(t, []any{false, false}, cityB.Values)
	assert.False(t, out.HasColumn("city"))
}

func TestExplicitEncodeColumns(t *testing.T) {
	cfg := encodeConfig(EncodeLabel)
	cfg.EncodeColumns = []string{"city", "ghost"}
	engine := NewEngine(testLogger(), cfg)

	tbl := buildTable(t,
		dataset.NewColumn("city", []any{"a", "b"}),
		dataset.NewColumn("note", []any{"p", "q"}),
	)
	out, result, err := engine.FitTransform(context.Background(), tbl, "")
	require.NoError(t, err)

	city, _ := out.Column("city")
	assert.Equal(t, []any{int64(0), int64(1)}, city.Values)

	// Columns outside the list stay as they are.
	note, _ := out.Column("note")
	assert.Equal(t, []any{"p", "q"}, note.Values)

	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "ghost")
}
