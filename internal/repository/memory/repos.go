package memory

import (
	"context"

	"github.com/senyabanana/container-rental/internal/models"
	"github.com/senyabanana/container-rental/internal/repository"

	"github.com/google/uuid"
)

type repositories struct {
	requests  *requestRepository
	proposals *proposalRepository
	rentals   *rentalRepository
	customers *customerRepository
}

func newRepositories(store *Store, sess session) repositories {
	return repositories{
		requests:  &requestRepository{store: store, sess: sess},
		proposals: &proposalRepository{store: store, sess: sess},
		rentals:   &rentalRepository{store: store, sess: sess},
		customers: &customerRepository{store: store, sess: sess},
	}
}

func (r repositories) Requests() repository.RequestRepository   { return r.requests }
func (r repositories) Proposals() repository.ProposalRepository { return r.proposals }
func (r repositories) Rentals() repository.RentalRepository     { return r.rentals }
func (r repositories) Customers() repository.CustomerRepository { return r.customers }

var requestComparators = map[repository.OrderKey]comparator[models.RentalRequest]{
	repository.OrderByID:        func(a, b models.RentalRequest) int { return compareIDs(a.ID, b.ID) },
	repository.OrderByCreatedAt: func(a, b models.RentalRequest) int { return a.CreatedAt.Compare(b.CreatedAt) },
}

var proposalComparators = map[repository.OrderKey]comparator[models.Proposal]{
	repository.OrderByID:        func(a, b models.Proposal) int { return compareIDs(a.ID, b.ID) },
	repository.OrderByCreatedAt: func(a, b models.Proposal) int { return a.CreatedAt.Compare(b.CreatedAt) },
}

var rentalComparators = map[repository.OrderKey]comparator[models.Rental]{
	repository.OrderByID:        func(a, b models.Rental) int { return compareIDs(a.ID, b.ID) },
	repository.OrderByStartedAt: func(a, b models.Rental) int { return a.StartedAt.Compare(b.StartedAt) },
}

var customerComparators = map[repository.OrderKey]comparator[models.Customer]{
	repository.OrderByID: func(a, b models.Customer) int { return compareIDs(a.ID, b.ID) },
	repository.OrderByName: func(a, b models.Customer) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	},
}

type requestRepository struct {
	store *Store
	sess  session
}

func matchRequest(filter repository.RequestFilter) func(models.RentalRequest) bool {
	return func(r models.RentalRequest) bool {
		return matchID(filter.ID, r.ID) &&
			matchID(filter.CustomerID, r.CustomerID) &&
			matchStatus(filter.Statuses, r.Status)
	}
}

func (r *requestRepository) FindFirst(ctx context.Context, filter repository.RequestFilter, order repository.OrderBy) (*models.RentalRequest, error) {
	if err := r.store.fault("requests.find"); err != nil {
		return nil, err
	}
	t, err := r.sess.read(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := applyOrder(selectRows(t.requests, matchRequest(filter)), requestComparators, order)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	request := rows[0].value
	request.Proposals = t.proposalsOf(request.ID)
	return &request, nil
}

func (r *requestRepository) FindMany(ctx context.Context, filter repository.RequestFilter) ([]models.RentalRequest, error) {
	if err := r.store.fault("requests.find"); err != nil {
		return nil, err
	}
	t, err := r.sess.read(ctx)
	if err != nil {
		return nil, err
	}
	return values(applyPage(selectRows(t.requests, matchRequest(filter)), filter.Page)), nil
}

func (r *requestRepository) checkAddress(t *tables, request models.RentalRequest) error {
	if request.AddressID == nil {
		return nil
	}
	if _, ok := t.addresses[*request.AddressID]; !ok {
		return models.NotFoundf("address %s not found", *request.AddressID)
	}
	return nil
}

func (r *requestRepository) Add(ctx context.Context, request *models.RentalRequest) (*models.RentalRequest, error) {
	if err := r.store.fault("requests.add"); err != nil {
		return nil, err
	}
	stored := *request
	stored.Proposals = nil
	err := r.sess.write(ctx, func(t *tables) error {
		if _, ok := t.requests[stored.ID]; ok {
			return models.Conflictf("rental request %s already exists", stored.ID)
		}
		if err := r.checkAddress(t, stored); err != nil {
			return err
		}
		t.requests[stored.ID] = record[models.RentalRequest]{seq: t.seq(), value: stored}
		return nil
	})
	if err != nil {
		return nil, err
	}

	added := *request
	return &added, nil
}

func (r *requestRepository) Update(ctx context.Context, request *models.RentalRequest) (*models.RentalRequest, error) {
	if err := r.store.fault("requests.update"); err != nil {
		return nil, err
	}
	stored := *request
	stored.Proposals = nil
	err := r.sess.write(ctx, func(t *tables) error {
		existing, ok := t.requests[stored.ID]
		if !ok {
			return models.NotFoundf("rental request %s not found", stored.ID)
		}
		if err := r.checkAddress(t, stored); err != nil {
			return err
		}
		stored.CustomerID = existing.value.CustomerID
		stored.CreatedAt = existing.value.CreatedAt
		t.requests[stored.ID] = record[models.RentalRequest]{seq: existing.seq, value: stored}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated := *request
	return &updated, nil
}

func (r *requestRepository) Remove(ctx context.Context, request *models.RentalRequest) error {
	if err := r.store.fault("requests.remove"); err != nil {
		return err
	}
	return r.sess.write(ctx, func(t *tables) error {
		if _, ok := t.requests[request.ID]; !ok {
			return models.NotFoundf("rental request %s not found", request.ID)
		}
		t.removeRequest(request.ID)
		return nil
	})
}

type proposalRepository struct {
	store *Store
	sess  session
}

func matchProposal(filter repository.ProposalFilter) func(models.Proposal) bool {
	return func(p models.Proposal) bool {
		return matchID(filter.ID, p.ID) &&
			matchID(filter.RequestID, p.RequestID) &&
			matchID(filter.CustomerID, p.CustomerID) &&
			matchStatus(filter.Statuses, p.Status)
	}
}

func (r *proposalRepository) FindFirst(ctx context.Context, filter repository.ProposalFilter, order repository.OrderBy) (*models.Proposal, error) {
	if err := r.store.fault("proposals.find"); err != nil {
		return nil, err
	}
	t, err := r.sess.read(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := applyOrder(selectRows(t.proposals, matchProposal(filter)), proposalComparators, order)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	proposal := rows[0].value
	proposal.Comments = t.commentsOf(proposal.ID)
	return &proposal, nil
}

func (r *proposalRepository) FindMany(ctx context.Context, filter repository.ProposalFilter) ([]models.Proposal, error) {
	if err := r.store.fault("proposals.find"); err != nil {
		return nil, err
	}
	t, err := r.sess.read(ctx)
	if err != nil {
		return nil, err
	}
	return values(applyPage(selectRows(t.proposals, matchProposal(filter)), filter.Page)), nil
}

// putComments добавляет комментарии, которых еще нет; существующие не меняются.
func putComments(t *tables, proposal *models.Proposal) {
	for _, comment := range proposal.Comments {
		if _, ok := t.comments[comment.ID]; ok {
			continue
		}
		comment.ProposalID = proposal.ID
		t.comments[comment.ID] = record[models.Comment]{seq: t.seq(), value: comment}
	}
}

func (r *proposalRepository) Add(ctx context.Context, proposal *models.Proposal) (*models.Proposal, error) {
	if err := r.store.fault("proposals.add"); err != nil {
		return nil, err
	}
	stored := *proposal
	stored.Comments = nil
	err := r.sess.write(ctx, func(t *tables) error {
		if _, ok := t.proposals[stored.ID]; ok {
			return models.Conflictf("proposal %s already exists", stored.ID)
		}
		if _, ok := t.requests[stored.RequestID]; !ok {
			return models.NotFoundf("rental request %s not found", stored.RequestID)
		}
		if stored.Status == models.AcceptedProposal && t.acceptedProposalExists(stored.RequestID, stored.ID) {
			return models.Conflictf("rental request %s already has an accepted proposal", stored.RequestID)
		}
		t.proposals[stored.ID] = record[models.Proposal]{seq: t.seq(), value: stored}
		putComments(t, proposal)
		return nil
	})
	if err != nil {
		return nil, err
	}

	added := *proposal
	return &added, nil
}

func (r *proposalRepository) Update(ctx context.Context, proposal *models.Proposal) (*models.Proposal, error) {
	if err := r.store.fault("proposals.update"); err != nil {
		return nil, err
	}
	stored := *proposal
	stored.Comments = nil
	err := r.sess.write(ctx, func(t *tables) error {
		existing, ok := t.proposals[stored.ID]
		if !ok {
			return models.NotFoundf("proposal %s not found", stored.ID)
		}
		stored.RequestID = existing.value.RequestID
		stored.CustomerID = existing.value.CustomerID
		stored.CreatedAt = existing.value.CreatedAt
		if stored.Status == models.AcceptedProposal && t.acceptedProposalExists(stored.RequestID, stored.ID) {
			return models.Conflictf("rental request %s already has an accepted proposal", stored.RequestID)
		}
		t.proposals[stored.ID] = record[models.Proposal]{seq: existing.seq, value: stored}
		putComments(t, proposal)
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated := *proposal
	return &updated, nil
}

func (r *proposalRepository) Remove(ctx context.Context, proposal *models.Proposal) error {
	if err := r.store.fault("proposals.remove"); err != nil {
		return err
	}
	return r.sess.write(ctx, func(t *tables) error {
		if _, ok := t.proposals[proposal.ID]; !ok {
			return models.NotFoundf("proposal %s not found", proposal.ID)
		}
		t.removeProposal(proposal.ID)
		return nil
	})
}

type rentalRepository struct {
	store *Store
	sess  session
}

func matchRental(filter repository.RentalFilter) func(models.Rental) bool {
	return func(r models.Rental) bool {
		return matchID(filter.ID, r.ID) &&
			matchID(filter.ProposalID, r.ProposalID) &&
			matchID(filter.CustomerID, r.CustomerID) &&
			matchStatus(filter.Statuses, r.Status)
	}
}

func (r *rentalRepository) FindFirst(ctx context.Context, filter repository.RentalFilter, order repository.OrderBy) (*models.Rental, error) {
	if err := r.store.fault("rentals.find"); err != nil {
		return nil, err
	}
	t, err := r.sess.read(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := applyOrder(selectRows(t.rentals, matchRental(filter)), rentalComparators, order)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	rental := rows[0].value
	return &rental, nil
}

func (r *rentalRepository) FindMany(ctx context.Context, filter repository.RentalFilter) ([]models.Rental, error) {
	if err := r.store.fault("rentals.find"); err != nil {
		return nil, err
	}
	t, err := r.sess.read(ctx)
	if err != nil {
		return nil, err
	}
	return values(applyPage(selectRows(t.rentals, matchRental(filter)), filter.Page)), nil
}

func (r *rentalRepository) Add(ctx context.Context, rental *models.Rental) (*models.Rental, error) {
	if err := r.store.fault("rentals.add"); err != nil {
		return nil, err
	}
	stored := *rental
	err := r.sess.write(ctx, func(t *tables) error {
		if _, ok := t.rentals[stored.ID]; ok {
			return models.Conflictf("rental %s already exists", stored.ID)
		}
		if _, ok := t.proposals[stored.ProposalID]; !ok {
			return models.NotFoundf("proposal %s not found", stored.ProposalID)
		}
		for _, existing := range t.rentals {
			if existing.value.ProposalID == stored.ProposalID {
				return models.Conflictf("proposal %s already has a rental", stored.ProposalID)
			}
		}
		t.rentals[stored.ID] = record[models.Rental]{seq: t.seq(), value: stored}
		return nil
	})
	if err != nil {
		return nil, err
	}

	added := *rental
	return &added, nil
}

func (r *rentalRepository) Update(ctx context.Context, rental *models.Rental) (*models.Rental, error) {
	if err := r.store.fault("rentals.update"); err != nil {
		return nil, err
	}
	stored := *rental
	err := r.sess.write(ctx, func(t *tables) error {
		existing, ok := t.rentals[stored.ID]
		if !ok {
			return models.NotFoundf("rental %s not found", stored.ID)
		}
		stored.ProposalID = existing.value.ProposalID
		stored.CustomerID = existing.value.CustomerID
		t.rentals[stored.ID] = record[models.Rental]{seq: existing.seq, value: stored}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated := *rental
	return &updated, nil
}

func (r *rentalRepository) Remove(ctx context.Context, rental *models.Rental) error {
	if err := r.store.fault("rentals.remove"); err != nil {
		return err
	}
	return r.sess.write(ctx, func(t *tables) error {
		if _, ok := t.rentals[rental.ID]; !ok {
			return models.NotFoundf("rental %s not found", rental.ID)
		}
		delete(t.rentals, rental.ID)
		return nil
	})
}

type customerRepository struct {
	store *Store
	sess  session
}

func matchCustomer(filter repository.CustomerFilter) func(models.Customer) bool {
	return func(c models.Customer) bool {
		return matchID(filter.ID, c.ID) && (filter.Email == "" || filter.Email == c.Email)
	}
}

func (r *customerRepository) FindFirst(ctx context.Context, filter repository.CustomerFilter, order repository.OrderBy) (*models.Customer, error) {
	if err := r.store.fault("customers.find"); err != nil {
		return nil, err
	}
	t, err := r.sess.read(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := applyOrder(selectRows(t.customers, matchCustomer(filter)), customerComparators, order)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	customer := rows[0].value
	customer.Addresses = t.addressesOf(customer.ID)
	return &customer, nil
}

func (r *customerRepository) FindMany(ctx context.Context, filter repository.CustomerFilter) ([]models.Customer, error) {
	if err := r.store.fault("customers.find"); err != nil {
		return nil, err
	}
	t, err := r.sess.read(ctx)
	if err != nil {
		return nil, err
	}
	customers := values(applyPage(selectRows(t.customers, matchCustomer(filter)), filter.Page))
	for i := range customers {
		customers[i].Addresses = t.addressesOf(customers[i].ID)
	}
	return customers, nil
}

func checkEmail(t *tables, customer models.Customer) error {
	for id, existing := range t.customers {
		if id != customer.ID && existing.value.Email == customer.Email {
			return models.Conflictf("customer with email %s already exists", customer.Email)
		}
	}
	return nil
}

// replaceAddresses приводит набор адресов клиента к набору в модели.
func replaceAddresses(t *tables, customer *models.Customer) {
	keep := map[uuid.UUID]bool{}
	for _, address := range customer.Addresses {
		keep[address.ID] = true
	}
	for id, address := range t.addresses {
		if address.value.CustomerID == customer.ID && !keep[id] {
			t.removeAddress(id)
		}
	}
	for _, address := range customer.Addresses {
		address.CustomerID = customer.ID
		existing, ok := t.addresses[address.ID]
		switch {
		case !ok:
			t.addresses[address.ID] = record[models.Address]{seq: t.seq(), value: address}
		case existing.value.CustomerID == customer.ID:
			t.addresses[address.ID] = record[models.Address]{seq: existing.seq, value: address}
		}
	}
}

func (r *customerRepository) Add(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if err := r.store.fault("customers.add"); err != nil {
		return nil, err
	}
	stored := *customer
	stored.Addresses = nil
	err := r.sess.write(ctx, func(t *tables) error {
		if _, ok := t.customers[stored.ID]; ok {
			return models.Conflictf("customer %s already exists", stored.ID)
		}
		if err := checkEmail(t, stored); err != nil {
			return err
		}
		t.customers[stored.ID] = record[models.Customer]{seq: t.seq(), value: stored}
		replaceAddresses(t, customer)
		return nil
	})
	if err != nil {
		return nil, err
	}

	added := *customer
	return &added, nil
}

func (r *customerRepository) Update(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if err := r.store.fault("customers.update"); err != nil {
		return nil, err
	}
	stored := *customer
	stored.Addresses = nil
	err := r.sess.write(ctx, func(t *tables) error {
		existing, ok := t.customers[stored.ID]
		if !ok {
			return models.NotFoundf("customer %s not found", stored.ID)
		}
		if err := checkEmail(t, stored); err != nil {
			return err
		}
		t.customers[stored.ID] = record[models.Customer]{seq: existing.seq, value: stored}
		replaceAddresses(t, customer)
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated := *customer
	return &updated, nil
}

func (r *customerRepository) Remove(ctx context.Context, customer *models.Customer) error {
	if err := r.store.fault("customers.remove"); err != nil {
		return err
	}
	return r.sess.write(ctx, func(t *tables) error {
		if _, ok := t.customers[customer.ID]; !ok {
			return models.NotFoundf("customer %s not found", customer.ID)
		}
		delete(t.customers, customer.ID)
		for id, address := range t.addresses {
			if address.value.CustomerID == customer.ID {
				t.removeAddress(id)
			}
		}
		return nil
	})
}
