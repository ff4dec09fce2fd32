package reporting_test

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procisocity/seedminer/pkg/mining"
	"github.com/procisocity/seedminer/pkg/reporting"
	"github.com/procisocity/seedminer/pkg/worldgen"
)

func TestWriteRecordsCSVHeaderMatchesSpecColumnOrder(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, reporting.WriteRecordsCSV(&buf, nil))

	r := csv.NewReader(&buf)
	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, []string{
		"seed", "seed_hex", "score", "objective_score",
		"day", "population", "happiness", "money", "avg_land_value",
		"traffic_congestion", "goods_satisfaction", "services_overall_satisfaction",
		"roads", "parks", "road_tiles", "water_tiles", "res_tiles", "com_tiles",
		"ind_tiles", "park_tiles",
		"sea_flood_frac", "sea_max_depth", "pond_frac", "pond_max_depth", "pond_volume",
		"overlay_phash", "pareto_rank", "pareto_crowding", "outlier_lof", "novelty",
	}, rows[0])
}

func TestWriteRecordsCSVEncodesSeedAndHashAsHex(t *testing.T) {
	t.Parallel()

	records := []mining.MineRecord{
		{
			Seed:         0xdeadbeef,
			OverlayPHash: 0x1,
			Stats:        worldgen.Stats{Day: 42, Population: 100.5},
			RoadTiles:    10, ParkTiles: 5,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, reporting.WriteRecordsCSV(&buf, records))

	r := csv.NewReader(&buf)
	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	row := rows[1]
	assert.Equal(t, "3735928559", row[0])
	assert.Equal(t, "0x00000000deadbeef", row[1])
	assert.Equal(t, "100.500000", row[5])
	assert.Equal(t, "10", row[12]) // roads
	assert.Equal(t, "5", row[13])  // parks
	assert.Equal(t, "10", row[14]) // road_tiles
	assert.Equal(t, "0x0000000000000001", row[25])
}
