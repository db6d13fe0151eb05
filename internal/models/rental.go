package models

import (
	"time"

	"github.com/google/uuid"
)

// Rental представляет договор аренды, созданный по принятому предложению.
type Rental struct {
	ID               uuid.UUID    `json:"id"`
	ProposalID       uuid.UUID    `json:"proposalId"`
	CustomerID       uuid.UUID    `json:"customerId"`
	StartedAt        time.Time    `json:"startedAt"`
	ExpectedDelivery time.Time    `json:"expectedDelivery"`
	TerminatesAt     time.Time    `json:"terminatesAt"`
	Status           RentalStatus `json:"status"`
}

// NewRental создает аренду по принятому предложению с датами, вычисленными из заявки.
func NewRental(request *RentalRequest, proposal *Proposal, acceptedAt time.Time) (*Rental, error) {
	if proposal.Status != AcceptedProposal {
		return nil, InvalidStatef("proposal %s is %s, rental requires an accepted proposal", proposal.ID, proposal.Status)
	}
	schedule, err := request.Schedule(acceptedAt)
	if err != nil {
		return nil, err
	}
	return &Rental{
		ID:               uuid.New(),
		ProposalID:       proposal.ID,
		CustomerID:       proposal.CustomerID,
		StartedAt:        schedule.StartedAt,
		ExpectedDelivery: schedule.ExpectedDelivery,
		TerminatesAt:     schedule.TerminatesAt,
		Status:           ActiveRental,
	}, nil
}
