package provider

import "context"

type Directory interface {
	Fetch(ctx context.Context) ([]Provider, []User, error)
}

type Users interface {
	User(id string) (User, bool)
}
