package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/senyabanana/container-rental/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
)

// PostgresCustomerRepository - реализация CustomerRepository для базы данных.
type PostgresCustomerRepository struct {
	DB DBTX
}

// NewPostgresCustomerRepository создаёт новый экземпляр PostgresCustomerRepository.
func NewPostgresCustomerRepository(db DBTX) *PostgresCustomerRepository {
	return &PostgresCustomerRepository{DB: db}
}

func (r *PostgresCustomerRepository) addresses(ctx context.Context, customerID uuid.UUID) ([]models.Address, error) {
	query := fmt.Sprintf(`SELECT %s FROM address WHERE customer_id = $1 ORDER BY seq`, addressColumns)
	rows, err := r.DB.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to select addresses: %w", err)
	}
	defer rows.Close()

	addresses := []models.Address{}
	for rows.Next() {
		var address models.Address
		if err := rows.Scan(
			&address.ID,
			&address.CustomerID,
			&address.PostalCode,
			&address.Street,
			&address.Number,
			&address.Complement,
			&address.District,
			&address.City,
			&address.State); err != nil {
			return nil, err
		}
		addresses = append(addresses, address)
	}
	return addresses, rows.Err()
}

// FindFirst возвращает первого подходящего клиента вместе с адресами.
func (r *PostgresCustomerRepository) FindFirst(ctx context.Context, filter CustomerFilter, order OrderBy) (*models.Customer, error) {
	query, args, err := buildCustomerQuery(filter, order, true)
	if err != nil {
		return nil, err
	}

	var customer models.Customer
	err = r.DB.QueryRow(ctx, query, args...).Scan(&customer.ID, &customer.Name, &customer.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select customer: %w", err)
	}

	customer.Addresses, err = r.addresses(ctx, customer.ID)
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// FindMany возвращает клиентов вместе с адресами.
func (r *PostgresCustomerRepository) FindMany(ctx context.Context, filter CustomerFilter) ([]models.Customer, error) {
	query, args, err := buildCustomerQuery(filter, OrderBy{}, false)
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select customers: %w", err)
	}

	customers := []models.Customer{}
	for rows.Next() {
		var customer models.Customer
		if err := rows.Scan(&customer.ID, &customer.Name, &customer.Email); err != nil {
			rows.Close()
			return nil, err
		}
		customers = append(customers, customer)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range customers {
		customers[i].Addresses, err = r.addresses(ctx, customers[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return customers, nil
}

// replaceAddresses приводит набор адресов клиента в базе к набору в модели.
func replaceAddresses(ctx context.Context, tx pgx.Tx, customer *models.Customer) error {
	keep := make([]string, 0, len(customer.Addresses))
	for _, address := range customer.Addresses {
		keep = append(keep, address.ID.String())
	}
	if _, err := tx.Exec(ctx, `DELETE FROM address WHERE customer_id = $1 AND NOT (id = ANY($2::UUID[]))`, customer.ID, pq.Array(keep)); err != nil {
		return fmt.Errorf("failed to delete addresses: %w", err)
	}

	for _, address := range customer.Addresses {
		_, err := tx.Exec(ctx, `
			INSERT INTO address (id, customer_id, postal_code, street, number, complement, district, city, state)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (id) DO UPDATE
			SET postal_code = EXCLUDED.postal_code, street = EXCLUDED.street, number = EXCLUDED.number,
			    complement = EXCLUDED.complement, district = EXCLUDED.district, city = EXCLUDED.city, state = EXCLUDED.state
			WHERE address.customer_id = EXCLUDED.customer_id
		`,
			address.ID,
			customer.ID,
			address.PostalCode,
			address.Street,
			address.Number,
			address.Complement,
			address.District,
			address.City,
			address.State)
		if err != nil {
			return fmt.Errorf("failed to upsert address: %w", mapError(err, "address"))
		}
	}
	return nil
}

// Add сохраняет нового клиента и его адреса.
func (r *PostgresCustomerRepository) Add(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	err := pgx.BeginFunc(ctx, r.DB, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO customer (id, name, email) VALUES ($1, $2, $3)`,
			customer.ID, customer.Name, customer.Email)
		if err != nil {
			return fmt.Errorf("failed to insert customer: %w", mapError(err, "customer"))
		}
		return replaceAddresses(ctx, tx, customer)
	})
	if err != nil {
		return nil, err
	}

	added := *customer
	return &added, nil
}

// Update сохраняет клиента; адреса, исключенные из модели, удаляются.
func (r *PostgresCustomerRepository) Update(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	err := pgx.BeginFunc(ctx, r.DB, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE customer SET name = $1, email = $2 WHERE id = $3`,
			customer.Name, customer.Email, customer.ID)
		if err != nil {
			return fmt.Errorf("failed to update customer: %w", mapError(err, "customer"))
		}
		if tag.RowsAffected() == 0 {
			return models.NotFoundf("customer %s not found", customer.ID)
		}
		return replaceAddresses(ctx, tx, customer)
	})
	if err != nil {
		return nil, err
	}

	updated := *customer
	return &updated, nil
}

// Remove удаляет клиента вместе с адресами.
func (r *PostgresCustomerRepository) Remove(ctx context.Context, customer *models.Customer) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM customer WHERE id = $1`, customer.ID)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.NotFoundf("customer %s not found", customer.ID)
	}
	return nil
}
