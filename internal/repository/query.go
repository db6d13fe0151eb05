package repository

import (
	"fmt"
	"strings"

	"github.com/senyabanana/container-rental/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	requestColumns  = "id, customer_id, description, estimated_quantity, purpose, desired_start, lead_time_days, duration_days, address_id, status, created_at"
	proposalColumns = "id, request_id, customer_id, (total_value * 100)::BIGINT, created_at, expires_at, document_name, status"
	commentColumns  = "id, proposal_id, text, created_at, author"
	rentalColumns   = "id, proposal_id, customer_id, started_at, expected_delivery, terminates_at, status"
	customerColumns = "id, name, email"
	addressColumns  = "id, customer_id, postal_code, street, number, complement, district, city, state"
)

var requestOrderColumns = map[OrderKey]string{
	OrderByID:        "id",
	OrderByCreatedAt: "created_at",
}

var proposalOrderColumns = map[OrderKey]string{
	OrderByID:        "id",
	OrderByCreatedAt: "created_at",
}

var rentalOrderColumns = map[OrderKey]string{
	OrderByID:        "id",
	OrderByStartedAt: "started_at",
}

var customerOrderColumns = map[OrderKey]string{
	OrderByID:   "id",
	OrderByName: "name",
}

// selectQuery собирает SELECT с фильтрами, нумеруя аргументы по порядку.
type selectQuery struct {
	table    string
	columns  string
	filters  []string
	args     []interface{}
	argIndex int
}

func newSelectQuery(table, columns string) *selectQuery {
	return &selectQuery{table: table, columns: columns, argIndex: 1}
}

func (q *selectQuery) whereID(column string, id uuid.UUID) {
	if id == uuid.Nil {
		return
	}
	q.where(column, id)
}

func (q *selectQuery) where(column string, value interface{}) {
	q.filters = append(q.filters, fmt.Sprintf("%s = $%d", column, q.argIndex))
	q.args = append(q.args, value)
	q.argIndex++
}

func (q *selectQuery) whereAny(column string, values []string) {
	if len(values) == 0 {
		return
	}
	q.filters = append(q.filters, fmt.Sprintf("%s = ANY($%d)", column, q.argIndex))
	q.args = append(q.args, pq.Array(values))
	q.argIndex++
}

// build возвращает текст запроса и аргументы; orderBy уже содержит ключ упорядочивания.
func (q *selectQuery) build(orderBy string, page Page, forUpdate bool) (string, []interface{}) {
	query := fmt.Sprintf("SELECT %s FROM %s", q.columns, q.table)
	if len(q.filters) > 0 {
		query += " WHERE " + strings.Join(q.filters, " AND ")
	}
	query += " ORDER BY " + orderBy

	args := q.args
	if page.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", q.argIndex)
		args = append(args, page.Limit)
		q.argIndex++
	}
	if page.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", q.argIndex)
		args = append(args, page.Offset)
		q.argIndex++
	}
	if forUpdate {
		query += " FOR UPDATE"
	}
	return query, args
}

// orderClause переводит OrderBy в ORDER BY; при равенстве порядок задает seq.
func orderClause(columns map[OrderKey]string, order OrderBy) (string, error) {
	if order.Key == "" {
		return "seq", nil
	}
	column, ok := columns[order.Key]
	if !ok {
		return "", models.Validationf("unsupported order key %q", order.Key)
	}
	if order.Desc {
		return column + " DESC, seq", nil
	}
	return column + ", seq", nil
}

func statusNames[S fmt.Stringer](statuses []S) []string {
	names := make([]string, 0, len(statuses))
	for _, status := range statuses {
		names = append(names, status.String())
	}
	return names
}

func buildRequestQuery(filter RequestFilter, order OrderBy, first bool) (string, []interface{}, error) {
	orderBy, err := orderClause(requestOrderColumns, order)
	if err != nil {
		return "", nil, err
	}
	q := newSelectQuery("rental_request", requestColumns)
	q.whereID("id", filter.ID)
	q.whereID("customer_id", filter.CustomerID)
	q.whereAny("status", statusNames(filter.Statuses))

	page := filter.Page
	if first {
		page = Page{Limit: 1}
	}
	query, args := q.build(orderBy, page, filter.ForUpdate)
	return query, args, nil
}

func buildProposalQuery(filter ProposalFilter, order OrderBy, first bool) (string, []interface{}, error) {
	orderBy, err := orderClause(proposalOrderColumns, order)
	if err != nil {
		return "", nil, err
	}
	q := newSelectQuery("proposal", proposalColumns)
	q.whereID("id", filter.ID)
	q.whereID("request_id", filter.RequestID)
	q.whereID("customer_id", filter.CustomerID)
	q.whereAny("status", statusNames(filter.Statuses))

	page := filter.Page
	if first {
		page = Page{Limit: 1}
	}
	query, args := q.build(orderBy, page, filter.ForUpdate)
	return query, args, nil
}

func buildRentalQuery(filter RentalFilter, order OrderBy, first bool) (string, []interface{}, error) {
	orderBy, err := orderClause(rentalOrderColumns, order)
	if err != nil {
		return "", nil, err
	}
	q := newSelectQuery("rental", rentalColumns)
	q.whereID("id", filter.ID)
	q.whereID("proposal_id", filter.ProposalID)
	q.whereID("customer_id", filter.CustomerID)
	q.whereAny("status", statusNames(filter.Statuses))

	page := filter.Page
	if first {
		page = Page{Limit: 1}
	}
	query, args := q.build(orderBy, page, false)
	return query, args, nil
}

func buildCustomerQuery(filter CustomerFilter, order OrderBy, first bool) (string, []interface{}, error) {
	orderBy, err := orderClause(customerOrderColumns, order)
	if err != nil {
		return "", nil, err
	}
	q := newSelectQuery("customer", customerColumns)
	q.whereID("id", filter.ID)
	if filter.Email != "" {
		q.where("email", filter.Email)
	}

	page := filter.Page
	if first {
		page = Page{Limit: 1}
	}
	query, args := q.build(orderBy, page, false)
	return query, args, nil
}
