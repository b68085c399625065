package client

import (
	"context"
	"errors"

	pool "github.com/jolestar/go-commons-pool/v2"
)

type connectionFactory struct {
	Addr string
}

func (f *connectionFactory) MakeObject(ctx context.Context) (*pool.PooledObject, error) {
	c, err := MakeClient(f.Addr)
	if err != nil {
		return nil, err
	}
	c.Start()
	return pool.NewPooledObject(c), nil
}

func (f *connectionFactory) DestroyObject(ctx context.Context, object *pool.PooledObject) error {
	c, ok := object.Object.(*Client)
	if !ok {
		return errors.New("type mismatch")
	}
	c.Close()
	return nil
}

func (f *connectionFactory) ValidateObject(ctx context.Context, object *pool.PooledObject) bool {
	return true
}

func (f *connectionFactory) ActivateObject(ctx context.Context, object *pool.PooledObject) error {
	return nil
}

func (f *connectionFactory) PassivateObject(ctx context.Context, object *pool.PooledObject) error {
	return nil
}

// Pool keeps reusable client connections to one server, for callers that
// issue requests from many goroutines.
type Pool struct {
	inner *pool.ObjectPool
}

// MakePool creates a connection pool for the given server address
func MakePool(ctx context.Context, addr string) *Pool {
	return &Pool{
		inner: pool.NewObjectPoolWithDefaultConfig(ctx, &connectionFactory{
			Addr: addr,
		}),
	}
}

// Borrow takes a client from the pool, dialing a new one if needed
func (p *Pool) Borrow(ctx context.Context) (*Client, error) {
	obj, err := p.inner.BorrowObject(ctx)
	if err != nil {
		return nil, err
	}
	c, ok := obj.(*Client)
	if !ok {
		return nil, errors.New("type mismatch")
	}
	return c, nil
}

// Return gives a borrowed client back to the pool
func (p *Pool) Return(ctx context.Context, c *Client) error {
	return p.inner.ReturnObject(ctx, c)
}

// Close destroys all pooled connections
func (p *Pool) Close(ctx context.Context) {
	p.inner.Close(ctx)
}
