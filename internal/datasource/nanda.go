package datasource

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/RaynaArora/neo-hackathon/internal/models"
)

const nandaSourceName = "nanda"

// NANDA column names.
const (
	nandaFIPSColumn     = "STCOFIPS10"
	nandaYearColumn     = "YEAR"
	nandaDemRatioColumn = "PRES_DEM_RATIO"
	nandaRepRatioColumn = "PRES_REP_RATIO"
	nandaSenDemColumn   = "SEN_DEM_RATIO"
	nandaSenRepColumn   = "SEN_REP_RATIO"
)

type countyShare struct {
	fips string
	year int
	dem  float64
	rep  float64
	// Senate ratios are blank in years without a Senate contest.
	hasSenate bool
	senDem    float64
	senRep    float64
}

// NANDAFile implements DemographicSource from a county-level party-share TSV.
// Only rows for the most recent year in the file are used.
type NANDAFile struct {
	path     string
	counties []countyShare
	year     int
	logger   *logrus.Logger
}

// LoadNANDAFile reads the TSV at path.
func LoadNANDAFile(path string, logger *logrus.Logger) (*NANDAFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open demographic file: %w", err)
	}
	defer f.Close()

	src, err := ParseNANDA(f, logger)
	if err != nil {
		return nil, err
	}
	src.path = path
	return src, nil
}

// ParseNANDA reads tab-separated county rows from r.
func ParseNANDA(r io.Reader, logger *logrus.Logger) (*NANDAFile, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, NewDataSourceError(nandaSourceName, ErrCodeInvalidData, "missing header row", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{nandaFIPSColumn, nandaYearColumn, nandaDemRatioColumn} {
		if _, ok := cols[required]; !ok {
			return nil, NewDataSourceError(nandaSourceName, ErrCodeInvalidData, "missing column "+required, nil)
		}
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	src := &NANDAFile{logger: logger}
	skipped := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		fips := field(row, nandaFIPSColumn)
		year, yerr := strconv.Atoi(field(row, nandaYearColumn))
		dem, derr := strconv.ParseFloat(field(row, nandaDemRatioColumn), 64)
		if fips == "" || yerr != nil || derr != nil {
			skipped++
			continue
		}
		rep, rerr := strconv.ParseFloat(field(row, nandaRepRatioColumn), 64)
		if rerr != nil {
			rep = 0
		}
		if len(fips) == 4 {
			fips = "0" + fips
		}
		county := countyShare{fips: fips, year: year, dem: dem, rep: rep}
		if senDem, err := strconv.ParseFloat(field(row, nandaSenDemColumn), 64); err == nil {
			county.hasSenate = true
			county.senDem = senDem
			if senRep, err := strconv.ParseFloat(field(row, nandaSenRepColumn), 64); err == nil {
				county.senRep = senRep
			}
		}
		src.counties = append(src.counties, county)
		if year > src.year {
			src.year = year
		}
	}

	if skipped > 0 && logger != nil {
		logger.WithField("skipped_rows", skipped).Warn("Skipped malformed demographic rows")
	}
	return src, nil
}

// Name returns the data source name
func (n *NANDAFile) Name() string {
	return nandaSourceName
}

// Year returns the data year in use.
func (n *NANDAFile) Year() int {
	return n.year
}

// PartySplit averages county shares whose FIPS code falls within the state.
// Senate shares are averaged over the counties that report them.
func (n *NANDAFile) PartySplit(ctx context.Context, state string) (*models.RegionalPartySplit, error) {
	prefix, ok := models.StateFIPS(state)
	if !ok {
		return nil, NotFound(nandaSourceName, "unknown state "+state)
	}

	var demSum, repSum, senDemSum, senRepSum float64
	count, senCount := 0, 0
	for _, c := range n.counties {
		if c.year != n.year || !strings.HasPrefix(c.fips, prefix) {
			continue
		}
		demSum += c.dem
		repSum += c.rep
		count++
		if c.hasSenate {
			senDemSum += c.senDem
			senRepSum += c.senRep
			senCount++
		}
	}
	if count == 0 {
		return nil, NotFound(nandaSourceName, "no county rows for "+state)
	}

	split := &models.RegionalPartySplit{
		State:       strings.ToUpper(state),
		DemShare:    demSum / float64(count),
		RepShare:    repSum / float64(count),
		CountyCount: count,
		SourceYear:  n.year,
	}
	if senCount > 0 {
		split.SenateDemShare = senDemSum / float64(senCount)
		split.SenateRepShare = senRepSum / float64(senCount)
		split.SenateCounties = senCount
	}
	return split, nil
}
