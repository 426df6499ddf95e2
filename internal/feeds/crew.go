package feeds

import (
	"context"
	"encoding/json"
	"fmt"
)

type crewResponse struct {
	Message string       `json:"message"`
	Number  int          `json:"number"`
	People  []CrewMember `json:"people"`
}

// FetchCrew retrieves the roster of people in space and filters it to the
// subset affiliated with the given craft. An empty craft returns everyone.
func (c *Client) FetchCrew(ctx context.Context, craft string) ([]CrewMember, error) {
	body, err := c.get(ctx, c.crewURL)
	if err != nil {
		return nil, err
	}

	var resp crewResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse crew roster: %w", err)
	}
	if resp.Message != "success" {
		return nil, fmt.Errorf("crew feed returned message %q", resp.Message)
	}

	if craft == "" {
		return resp.People, nil
	}

	var crew []CrewMember
	for _, p := range resp.People {
		if p.Craft == craft {
			crew = append(crew, p)
		}
	}
	return crew, nil
}
