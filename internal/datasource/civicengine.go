package datasource

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/RaynaArora/neo-hackathon/internal/models"
)

const civicEngineSourceName = "civicengine"

const (
	electionsQuery = `query GetElections($day: ISO8601Date!, $first: Int!) {
  elections(filterBy: { electionDay: { gte: $day } }, first: $first) {
    nodes { id name electionDay }
  }
}`

	racesQuery = `query GetRaces($electionId: ID!, $first: Int!) {
  races(filterBy: { electionId: $electionId }, first: $first) {
    nodes {
      id
      position { id name level state }
    }
  }
}`

	// Level is an enum and has to be inlined.
	positionRacesQuery = `query GetPositionAndRaces($positionName: String!) {
  positions(filterBy: { name: { contains: $positionName } level: %s }, first: 20) {
    nodes {
      id
      name
      races(first: 100, orderBy: { field: ELECTION_DAY, direction: DESC }) {
        nodes {
          id
          election { id name electionDay }
          candidacies {
            candidate { fullName }
            parties { name }
            result
          }
        }
      }
    }
  }
}`
)

// CivicEngineClient implements ElectionSource against the CivicEngine GraphQL API.
type CivicEngineClient struct {
	httpClient       *RateLimitedHTTPClient
	endpoint         string
	token            string
	maxElections     int
	racesPerElection int
	logger           *logrus.Logger
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type ceElection struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ElectionDay string `json:"electionDay"`
}

type cePosition struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Level string `json:"level"`
	State string `json:"state"`
}

type ceRace struct {
	ID          string        `json:"id"`
	Position    *cePosition   `json:"position"`
	Election    *ceElection   `json:"election"`
	Candidacies []ceCandidacy `json:"candidacies"`
}

type ceCandidacy struct {
	Candidate struct {
		FullName string `json:"fullName"`
	} `json:"candidate"`
	Parties []struct {
		Name string `json:"name"`
	} `json:"parties"`
	Result string `json:"result"`
}

type electionsResponse struct {
	Data struct {
		Elections struct {
			Nodes []ceElection `json:"nodes"`
		} `json:"elections"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

type racesResponse struct {
	Data struct {
		Races struct {
			Nodes []ceRace `json:"nodes"`
		} `json:"races"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

type positionsResponse struct {
	Data struct {
		Positions struct {
			Nodes []struct {
				ID    string `json:"id"`
				Name  string `json:"name"`
				Races struct {
					Nodes []ceRace `json:"nodes"`
				} `json:"races"`
			} `json:"nodes"`
		} `json:"positions"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

// NewCivicEngineClient creates an election metadata client.
func NewCivicEngineClient(httpClient *RateLimitedHTTPClient, endpoint, token string, maxElections int, logger *logrus.Logger) *CivicEngineClient {
	if endpoint == "" {
		endpoint = "https://bpi.civicengine.com/graphql"
	}
	if maxElections <= 0 {
		maxElections = 100
	}
	return &CivicEngineClient{
		httpClient:       httpClient,
		endpoint:         endpoint,
		token:            token,
		maxElections:     maxElections,
		racesPerElection: 200,
		logger:           orDiscard(logger),
	}
}

// Name returns the data source name
func (c *CivicEngineClient) Name() string {
	return civicEngineSourceName
}

func (c *CivicEngineClient) query(ctx context.Context, query string, vars map[string]interface{}, out interface{}) error {
	headers := map[string]string{}
	if c.token != "" {
		headers["Authorization"] = "Bearer " + c.token
	}
	return c.httpClient.PostJSON(ctx, civicEngineSourceName, c.endpoint, headers, graphQLRequest{Query: query, Variables: vars}, out)
}

func graphQLFailure(errs []graphQLError) error {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	return NewDataSourceError(civicEngineSourceName, ErrCodeInvalidData, "graphql errors: "+strings.Join(msgs, "; "), nil)
}

// UpcomingRaces returns races of elections held on or after since.
// Races whose position cannot be classified are skipped with a warning.
func (c *CivicEngineClient) UpcomingRaces(ctx context.Context, since time.Time) ([]models.Race, error) {
	var elections electionsResponse
	err := c.query(ctx, electionsQuery, map[string]interface{}{
		"day":   since.Format("2006-01-02"),
		"first": c.maxElections,
	}, &elections)
	if err != nil {
		return nil, err
	}
	if len(elections.Errors) > 0 {
		return nil, graphQLFailure(elections.Errors)
	}

	var races []models.Race
	for _, election := range elections.Data.Elections.Nodes {
		day, err := time.Parse("2006-01-02", election.ElectionDay)
		if election.ID == "" || err != nil {
			c.logger.WithField("election_id", election.ID).Warn("Skipping election without a usable election day")
			continue
		}

		var resp racesResponse
		if err := c.query(ctx, racesQuery, map[string]interface{}{
			"electionId": election.ID,
			"first":      c.racesPerElection,
		}, &resp); err != nil {
			if IsTransient(err) {
				return nil, err
			}
			c.logger.WithFields(logrus.Fields{
				"election_id": election.ID,
				"error":       err.Error(),
			}).Warn("Failed to fetch races for election")
			continue
		}
		if len(resp.Errors) > 0 {
			c.logger.WithFields(logrus.Fields{
				"election_id": election.ID,
				"error":       graphQLFailure(resp.Errors).Error(),
			}).Warn("GraphQL errors fetching races")
			continue
		}

		for _, r := range resp.Data.Races.Nodes {
			race, err := convertRace(r, election, day)
			if err != nil {
				c.logger.WithFields(logrus.Fields{
					"race_id": r.ID,
					"error":   err.Error(),
				}).Warn("Skipping malformed race record")
				continue
			}
			races = append(races, race)
		}
	}
	return races, nil
}

func convertRace(r ceRace, election ceElection, day time.Time) (models.Race, error) {
	if r.Position == nil {
		return models.Race{}, NewDataSourceError(civicEngineSourceName, ErrCodeInvalidData, "race has no position", nil)
	}
	level, ok := models.ParseLevel(r.Position.Level)
	if !ok {
		return models.Race{}, NewDataSourceError(civicEngineSourceName, ErrCodeInvalidData, fmt.Sprintf("unknown level %q", r.Position.Level), nil)
	}

	parsed := models.ParseRaceName(r.Position.Name)
	state := strings.ToUpper(r.Position.State)
	if state == "" {
		state = parsed.State
	}

	race := models.Race{
		ID:           r.ID,
		PositionID:   r.Position.ID,
		Name:         r.Position.Name,
		ElectionName: election.Name,
		Level:        level,
		Office:       parsed.Office,
		State:        state,
		District:     parsed.District,
		Year:         day.Year(),
		ElectionDate: day,
		ElectionType: models.ClassifyElectionType(election.Name),
	}
	if err := validateRecord(civicEngineSourceName, race); err != nil {
		return models.Race{}, err
	}
	return race, nil
}

// HistoricalOutcomes returns the winners of earlier races for the same
// position, one per year, preferring general elections.
func (c *CivicEngineClient) HistoricalOutcomes(ctx context.Context, race models.Race) (*models.HistoricalRecord, error) {
	level := strings.ToUpper(string(race.Level))

	var resp positionsResponse
	if err := c.query(ctx, fmt.Sprintf(positionRacesQuery, level), map[string]interface{}{
		"positionName": race.Name,
	}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		return nil, graphQLFailure(resp.Errors)
	}

	type winner struct {
		outcome models.HistoricalOutcome
		general bool
	}
	byYear := make(map[int]winner)
	for _, pos := range resp.Data.Positions.Nodes {
		if race.PositionID != "" && pos.ID != race.PositionID && pos.Name != race.Name {
			continue
		}
		for _, past := range pos.Races.Nodes {
			if past.Election == nil {
				continue
			}
			day, err := time.Parse("2006-01-02", past.Election.ElectionDay)
			if err != nil || !day.Before(race.ElectionDate) {
				continue
			}
			general := models.ClassifyElectionType(past.Election.Name) == models.ElectionGeneral
			for _, cand := range past.Candidacies {
				result := strings.ToUpper(cand.Result)
				if (result != "WON" && result != "WIN") || cand.Candidate.FullName == "" {
					continue
				}
				if existing, ok := byYear[day.Year()]; ok && (existing.general || !general) {
					continue
				}
				party := ""
				if len(cand.Parties) > 0 {
					party = cand.Parties[0].Name
				}
				byYear[day.Year()] = winner{
					outcome: models.HistoricalOutcome{Year: day.Year(), WinnerName: cand.Candidate.FullName, Party: party},
					general: general,
				}
			}
		}
	}

	if len(byYear) == 0 {
		return nil, NotFound(civicEngineSourceName, "no past winners for position")
	}

	record := &models.HistoricalRecord{PositionID: race.PositionID}
	for _, w := range byYear {
		record.Outcomes = append(record.Outcomes, w.outcome)
	}
	sort.Slice(record.Outcomes, func(i, j int) bool { return record.Outcomes[i].Year < record.Outcomes[j].Year })
	return record, nil
}
