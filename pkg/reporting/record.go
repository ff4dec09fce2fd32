package reporting

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/procisocity/seedminer/pkg/mining"
)

// csvFieldOrder is the exact CSV column order specified by spec.md §6.
var csvFieldOrder = []string{
	"seed", "seed_hex", "score", "objective_score",
	"day", "population", "happiness", "money", "avg_land_value",
	"traffic_congestion", "goods_satisfaction", "services_overall_satisfaction",
	"roads", "parks", "road_tiles", "water_tiles", "res_tiles", "com_tiles",
	"ind_tiles", "park_tiles",
	"sea_flood_frac", "sea_max_depth", "pond_frac", "pond_max_depth", "pond_volume",
	"overlay_phash", "pareto_rank", "pareto_crowding", "outlier_lof", "novelty",
}

// WriteCSVHeader writes the fixed CSV column header.
func WriteCSVHeader(w *csv.Writer) error {
	return w.Write(csvFieldOrder)
}

// WriteCSVRow writes one mining.MineRecord as a CSV row in the exact field
// order of spec.md §6. The seed column is decimal; seed_hex and
// overlay_phash are 16-hex-digit 0x-prefixed strings; floats use fixed
// precision 6.
func WriteCSVRow(w *csv.Writer, r mining.MineRecord) error {
	row := []string{
		strconv.FormatUint(r.Seed, 10),
		fmt.Sprintf("0x%016x", r.Seed),
		formatFixed6(r.Score),
		formatFixed6(r.ObjectiveScore),
		strconv.Itoa(r.Stats.Day),
		formatFixed6(r.Stats.Population),
		formatFixed6(r.Stats.Happiness),
		formatFixed6(r.Stats.Money),
		formatFixed6(r.Stats.AvgLandValue),
		formatFixed6(r.Stats.TrafficCongestion),
		formatFixed6(r.Stats.GoodsSatisfaction),
		formatFixed6(r.Stats.ServicesOverallSatisfaction),
		strconv.Itoa(r.RoadTiles),
		strconv.Itoa(r.ParkTiles),
		strconv.Itoa(r.RoadTiles),
		strconv.Itoa(r.WaterTiles),
		strconv.Itoa(r.ResTiles),
		strconv.Itoa(r.ComTiles),
		strconv.Itoa(r.IndTiles),
		strconv.Itoa(r.ParkTiles),
		formatFixed6(r.SeaFloodFrac),
		formatFixed6(r.SeaMaxDepth),
		formatFixed6(r.PondFrac),
		formatFixed6(r.PondMaxDepth),
		formatFixed6(r.PondVolume),
		fmt.Sprintf("0x%016x", r.OverlayPHash),
		strconv.Itoa(r.ParetoRank),
		formatFixed6(r.ParetoCrowding),
		formatFixed6(r.OutlierLof),
		formatFixed6(r.Novelty),
	}
	return w.Write(row)
}

func formatFixed6(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// WriteRecordsCSV writes a full set of records (header + rows) to w.
func WriteRecordsCSV(w io.Writer, records []mining.MineRecord) error {
	cw := csv.NewWriter(w)
	if err := WriteCSVHeader(cw); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		if err := WriteCSVRow(cw, r); err != nil {
			return fmt.Errorf("write csv row (seed %d): %w", r.Seed, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
