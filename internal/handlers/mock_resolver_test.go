package handlers_test

import (
	"context"

	"github.com/serroba/url-mapper/internal/shortener"
)

// failingResolver fails every operation with err.
type failingResolver struct {
	err error
}

func (f *failingResolver) List(context.Context) ([]shortener.Mapping, error) {
	return nil, f.err
}

func (f *failingResolver) Get(context.Context, shortener.ID) (*shortener.Mapping, error) {
	return nil, f.err
}

func (f *failingResolver) Create(context.Context, shortener.Mapping) (*shortener.Mapping, error) {
	return nil, f.err
}

func (f *failingResolver) Update(context.Context, shortener.ID, shortener.Mapping) (*shortener.Mapping, error) {
	return nil, f.err
}

func (f *failingResolver) Delete(context.Context, shortener.ID) error {
	return f.err
}

func (f *failingResolver) DeleteAll(context.Context) error {
	return f.err
}

func (f *failingResolver) ResolveForward(context.Context, string) (string, error) {
	return "", f.err
}

func (f *failingResolver) ResolveReverse(context.Context, string) (string, error) {
	return "", f.err
}
