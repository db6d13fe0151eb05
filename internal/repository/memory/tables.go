package memory

import (
	"bytes"
	"maps"
	"sort"

	"github.com/senyabanana/container-rental/internal/models"
	"github.com/senyabanana/container-rental/internal/repository"

	"github.com/google/uuid"
)

// record хранит значение вместе с порядковым номером вставки.
type record[T any] struct {
	seq   int64
	value T
}

// tables - неизменяемый снимок данных; запись идет в копию, которая затем публикуется.
type tables struct {
	nextSeq   int64
	requests  map[uuid.UUID]record[models.RentalRequest]
	proposals map[uuid.UUID]record[models.Proposal]
	comments  map[uuid.UUID]record[models.Comment]
	rentals   map[uuid.UUID]record[models.Rental]
	customers map[uuid.UUID]record[models.Customer]
	addresses map[uuid.UUID]record[models.Address]
}

func newTables() *tables {
	return &tables{
		requests:  map[uuid.UUID]record[models.RentalRequest]{},
		proposals: map[uuid.UUID]record[models.Proposal]{},
		comments:  map[uuid.UUID]record[models.Comment]{},
		rentals:   map[uuid.UUID]record[models.Rental]{},
		customers: map[uuid.UUID]record[models.Customer]{},
		addresses: map[uuid.UUID]record[models.Address]{},
	}
}

func (t *tables) clone() *tables {
	return &tables{
		nextSeq:   t.nextSeq,
		requests:  maps.Clone(t.requests),
		proposals: maps.Clone(t.proposals),
		comments:  maps.Clone(t.comments),
		rentals:   maps.Clone(t.rentals),
		customers: maps.Clone(t.customers),
		addresses: maps.Clone(t.addresses),
	}
}

func (t *tables) seq() int64 {
	t.nextSeq++
	return t.nextSeq
}

func (t *tables) proposalsOf(requestID uuid.UUID) []models.Proposal {
	return values(selectRows(t.proposals, func(p models.Proposal) bool { return p.RequestID == requestID }))
}

func (t *tables) commentsOf(proposalID uuid.UUID) []models.Comment {
	return values(selectRows(t.comments, func(c models.Comment) bool { return c.ProposalID == proposalID }))
}

func (t *tables) addressesOf(customerID uuid.UUID) []models.Address {
	return values(selectRows(t.addresses, func(a models.Address) bool { return a.CustomerID == customerID }))
}

func (t *tables) removeRequest(id uuid.UUID) {
	delete(t.requests, id)
	for proposalID, proposal := range t.proposals {
		if proposal.value.RequestID == id {
			t.removeProposal(proposalID)
		}
	}
}

func (t *tables) removeProposal(id uuid.UUID) {
	delete(t.proposals, id)
	for commentID, comment := range t.comments {
		if comment.value.ProposalID == id {
			delete(t.comments, commentID)
		}
	}
	for rentalID, rental := range t.rentals {
		if rental.value.ProposalID == id {
			delete(t.rentals, rentalID)
		}
	}
}

// removeAddress удаляет адрес и отвязывает его от заявок.
func (t *tables) removeAddress(id uuid.UUID) {
	delete(t.addresses, id)
	for requestID, request := range t.requests {
		if request.value.AddressID != nil && *request.value.AddressID == id {
			request.value.AddressID = nil
			t.requests[requestID] = request
		}
	}
}

func (t *tables) acceptedProposalExists(requestID, exceptID uuid.UUID) bool {
	for id, proposal := range t.proposals {
		if id != exceptID && proposal.value.RequestID == requestID && proposal.value.Status == models.AcceptedProposal {
			return true
		}
	}
	return false
}

// selectRows возвращает подходящие записи в порядке вставки.
func selectRows[T any](rows map[uuid.UUID]record[T], match func(T) bool) []record[T] {
	selected := make([]record[T], 0, len(rows))
	for _, row := range rows {
		if match(row.value) {
			selected = append(selected, row)
		}
	}
	sort.Slice(selected, func(i, j int) bool { return selected[i].seq < selected[j].seq })
	return selected
}

func values[T any](rows []record[T]) []T {
	result := make([]T, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.value)
	}
	return result
}

type comparator[T any] func(a, b T) int

// applyOrder упорядочивает записи по ключу; равные остаются в порядке вставки.
func applyOrder[T any](rows []record[T], comparators map[repository.OrderKey]comparator[T], order repository.OrderBy) ([]record[T], error) {
	if order.Key == "" {
		return rows, nil
	}
	compare, ok := comparators[order.Key]
	if !ok {
		return nil, models.Validationf("unsupported order key %q", order.Key)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if order.Desc {
			return compare(rows[j].value, rows[i].value) < 0
		}
		return compare(rows[i].value, rows[j].value) < 0
	})
	return rows, nil
}

func applyPage[T any](rows []record[T], page repository.Page) []record[T] {
	if page.Offset > 0 {
		if page.Offset >= len(rows) {
			return nil
		}
		rows = rows[page.Offset:]
	}
	if page.Limit > 0 && page.Limit < len(rows) {
		rows = rows[:page.Limit]
	}
	return rows
}

func compareIDs(a, b uuid.UUID) int {
	return bytes.Compare(a[:], b[:])
}

func matchID(filter, value uuid.UUID) bool {
	return filter == uuid.Nil || filter == value
}

func matchStatus[S comparable](statuses []S, value S) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, status := range statuses {
		if status == value {
			return true
		}
	}
	return false
}
