package models

import "fmt"

type (
	RequestStatus  uint8 // Статус заявки на аренду
	ProposalStatus uint8 // Статус предложения
	RentalStatus   uint8 // Статус аренды
)

const (
	ActiveRequest    RequestStatus = iota + 1 // Заявка активна
	CancelledRequest                          // Заявка отменена
)

const (
	PendingProposal  ProposalStatus = iota + 1 // Предложение ожидает решения
	AcceptedProposal                           // Предложение принято
	RejectedProposal                           // Предложение отклонено
)

const (
	ActiveRental    RentalStatus = iota + 1 // Аренда действует
	CompletedRental                         // Аренда завершена
	CancelledRental                         // Аренда отменена
)

var requestStatusNames = map[RequestStatus]string{
	ActiveRequest:    "Active",
	CancelledRequest: "Cancelled",
}

var proposalStatusNames = map[ProposalStatus]string{
	PendingProposal:  "Pending",
	AcceptedProposal: "Accepted",
	RejectedProposal: "Rejected",
}

var rentalStatusNames = map[RentalStatus]string{
	ActiveRental:    "Active",
	CompletedRental: "Completed",
	CancelledRental: "Cancelled",
}

var allowedRequestTransition = map[RequestStatus][]RequestStatus{
	ActiveRequest:    {CancelledRequest},
	CancelledRequest: {},
}

var allowedProposalTransition = map[ProposalStatus][]ProposalStatus{
	PendingProposal:  {AcceptedProposal, RejectedProposal},
	AcceptedProposal: {},
	RejectedProposal: {},
}

var allowedRentalTransition = map[RentalStatus][]RentalStatus{
	ActiveRental:    {CompletedRental, CancelledRental},
	CompletedRental: {},
	CancelledRental: {},
}

func contains[S ~uint8](statuses []S, target S) bool {
	for _, status := range statuses {
		if status == target {
			return true
		}
	}
	return false
}

func parseStatus[S ~uint8](names map[S]string, kind, value string) (S, error) {
	for status, name := range names {
		if name == value {
			return status, nil
		}
	}
	return 0, Validationf("unknown %s status %q", kind, value)
}

// ParseRequestStatus декодирует статус заявки из строки.
func ParseRequestStatus(value string) (RequestStatus, error) {
	return parseStatus(requestStatusNames, "request", value)
}

func (s RequestStatus) String() string {
	if name, ok := requestStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("RequestStatus(%d)", uint8(s))
}

// CanTransitionTo проверяет допустимость перехода статуса заявки.
func (s RequestStatus) CanTransitionTo(target RequestStatus) bool {
	return contains(allowedRequestTransition[s], target)
}

func (s RequestStatus) MarshalText() ([]byte, error) {
	if _, ok := requestStatusNames[s]; !ok {
		return nil, Validationf("invalid request status %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *RequestStatus) UnmarshalText(text []byte) error {
	status, err := ParseRequestStatus(string(text))
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// ParseProposalStatus декодирует статус предложения из строки.
func ParseProposalStatus(value string) (ProposalStatus, error) {
	return parseStatus(proposalStatusNames, "proposal", value)
}

func (s ProposalStatus) String() string {
	if name, ok := proposalStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("ProposalStatus(%d)", uint8(s))
}

// CanTransitionTo проверяет допустимость перехода статуса предложения.
func (s ProposalStatus) CanTransitionTo(target ProposalStatus) bool {
	return contains(allowedProposalTransition[s], target)
}

func (s ProposalStatus) MarshalText() ([]byte, error) {
	if _, ok := proposalStatusNames[s]; !ok {
		return nil, Validationf("invalid proposal status %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *ProposalStatus) UnmarshalText(text []byte) error {
	status, err := ParseProposalStatus(string(text))
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// ParseRentalStatus декодирует статус аренды из строки.
func ParseRentalStatus(value string) (RentalStatus, error) {
	return parseStatus(rentalStatusNames, "rental", value)
}

func (s RentalStatus) String() string {
	if name, ok := rentalStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("RentalStatus(%d)", uint8(s))
}

// CanTransitionTo проверяет допустимость перехода статуса аренды.
func (s RentalStatus) CanTransitionTo(target RentalStatus) bool {
	return contains(allowedRentalTransition[s], target)
}

func (s RentalStatus) MarshalText() ([]byte, error) {
	if _, ok := rentalStatusNames[s]; !ok {
		return nil, Validationf("invalid rental status %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *RentalStatus) UnmarshalText(text []byte) error {
	status, err := ParseRentalStatus(string(text))
	if err != nil {
		return err
	}
	*s = status
	return nil
}

