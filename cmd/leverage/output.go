package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/RaynaArora/neo-hackathon/internal/datasource"
	"github.com/RaynaArora/neo-hackathon/internal/scoring"
	"github.com/RaynaArora/neo-hackathon/internal/service"
)

func formatSaturation(sat *float64) string {
	if sat == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", *sat)
}

func printRanking(w io.Writer, ranking *service.Ranking) {
	fmt.Fprintf(w, "Run %s as of %s\n", ranking.RunID, ranking.AsOf.Format("2006-01-02"))
	fmt.Fprintln(w, ranking.Stats.String())
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tRACE\tLEVEL\tDAYS\tCOMP\tSAT\tSCORE\tQUALITY")
	for i, r := range ranking.Results {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%.3f\t%s\t%.4f\t%s/%s\n",
			i+1, r.Race.Name, r.Race.Level, r.DaysUntilElection,
			r.Competitiveness, formatSaturation(r.Saturation), r.Score,
			r.QualityCompetitiveness, r.QualitySaturation)
	}
	tw.Flush()

	if len(ranking.Skipped) > 0 {
		fmt.Fprintf(w, "\nSkipped %d races:\n", len(ranking.Skipped))
		for _, s := range ranking.Skipped {
			fmt.Fprintf(w, "  %s (%s): %s\n", s.Name, s.RaceID, s.Reason)
		}
	}
}

func printResult(w io.Writer, r *scoring.LeverageResult) {
	fmt.Fprintf(w, "%s (%s, %s)\n", r.Race.Name, r.Race.Level, r.Race.ElectionDate.Format("2006-01-02"))
	fmt.Fprintf(w, "  Competitiveness: %.3f (%s)\n", r.Competitiveness, r.QualityCompetitiveness)
	fmt.Fprintf(w, "  Saturation:      %s (%s, %s)\n", formatSaturation(r.Saturation), r.QualitySaturation, r.SaturationMethod)
	fmt.Fprintf(w, "  Time boost:      %.2f (%d days)\n", r.TimeBoost, r.DaysUntilElection)
	fmt.Fprintf(w, "  Score:           %.4f\n", r.Score)
	for _, s := range r.Signals {
		fmt.Fprintf(w, "  Signal %-12s value=%.3f weight=%.3f quality=%s\n", s.Source, s.Value, s.Weight, s.Quality)
	}
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "  ! %s\n", warning)
	}
}

func printProbe(w io.Writer, results []datasource.ProbeResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tREACHABLE\tLATENCY\tDETAIL")
	for _, r := range results {
		detail := "ok"
		if r.Err != nil {
			detail = r.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%t\t%s\t%s\n", r.Source, r.Reachable, r.Latency.Round(time.Millisecond), detail)
	}
	tw.Flush()
}
