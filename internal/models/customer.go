package models

import "github.com/google/uuid"

// Customer представляет клиента; его жизненный цикл ведется внешним сервисом.
type Customer struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Addresses []Address `json:"addresses"`
}

// Address представляет адрес доставки клиента.
type Address struct {
	ID         uuid.UUID `json:"id"`
	CustomerID uuid.UUID `json:"-"`
	PostalCode string    `json:"postalCode"`
	Street     string    `json:"street"`
	Number     string    `json:"number,omitempty"`
	Complement string    `json:"complement,omitempty"`
	District   string    `json:"district,omitempty"`
	City       string    `json:"city"`
	State      string    `json:"state,omitempty"`
}

// HasAddress проверяет, принадлежит ли адрес клиенту.
func (c *Customer) HasAddress(addressID uuid.UUID) bool {
	for _, address := range c.Addresses {
		if address.ID == addressID {
			return true
		}
	}
	return false
}

// AddAddress добавляет адрес клиенту.
func (c *Customer) AddAddress(address Address) Address {
	if address.ID == uuid.Nil {
		address.ID = uuid.New()
	}
	address.CustomerID = c.ID
	c.Addresses = append(c.Addresses, address)
	return address
}

// RemoveAddress удаляет адрес из коллекции клиента.
func (c *Customer) RemoveAddress(addressID uuid.UUID) bool {
	for i, address := range c.Addresses {
		if address.ID == addressID {
			c.Addresses = append(c.Addresses[:i], c.Addresses[i+1:]...)
			return true
		}
	}
	return false
}
