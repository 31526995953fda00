package index

import (
	"context"
	"fmt"
	"strconv"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

const (
	fieldID        = "id"
	fieldEmbedding = "embedding"
	fieldMetadata  = "metadata"

	// IVF_FLAT cluster count; fixed so every run builds the same index.
	indexNList = 128
)

// Milvus implements Client against a Milvus vector database.
type Milvus struct {
	conn client.Client
}

// Connect establishes a Milvus handle at addr (host:port). The handle is
// long-lived; callers own Close.
func Connect(ctx context.Context, addr string) (*Milvus, error) {
	conn, err := client.NewClient(ctx, client.Config{Address: addr})
	if err != nil {
		return nil, fmt.Errorf("%w: connect %s: %w", ErrUnavailable, addr, err)
	}
	return &Milvus{conn: conn}, nil
}

// HasCollection reports whether the named collection exists.
func (m *Milvus) HasCollection(ctx context.Context, name string) (bool, error) {
	return m.conn.HasCollection(ctx, name)
}

// CreateCollection creates a collection with an auto-assigned INT64 primary
// key, a fixed-dimension float vector field, and a JSON metadata field.
func (m *Milvus) CreateCollection(ctx context.Context, name string, dim int) error {
	schema := entity.NewSchema().
		WithName(name).
		WithDescription("document embeddings with per-stage metadata").
		WithField(entity.NewField().
			WithName(fieldID).
			WithDataType(entity.FieldTypeInt64).
			WithIsPrimaryKey(true).
			WithIsAutoID(true)).
		WithField(entity.NewField().
			WithName(fieldEmbedding).
			WithDataType(entity.FieldTypeFloatVector).
			WithDim(int64(dim))).
		WithField(entity.NewField().
			WithName(fieldMetadata).
			WithDataType(entity.FieldTypeJSON))

	return m.conn.CreateCollection(ctx, schema, entity.DefaultShardNumber)
}

// CollectionDimension returns the declared embedding dimension of an
// existing collection.
func (m *Milvus) CollectionDimension(ctx context.Context, name string) (int, error) {
	coll, err := m.conn.DescribeCollection(ctx, name)
	if err != nil {
		return 0, err
	}

	for _, field := range coll.Schema.Fields {
		if field.Name != fieldEmbedding {
			continue
		}
		dim, err := strconv.Atoi(field.TypeParams[entity.TypeParamDim])
		if err != nil {
			return 0, fmt.Errorf("collection %s: malformed dim param: %w", name, err)
		}
		return dim, nil
	}
	return 0, fmt.Errorf("collection %s has no %s field", name, fieldEmbedding)
}

// Insert writes the embedding and metadata columns as one batch and returns
// the auto-assigned primary keys in input order.
func (m *Milvus) Insert(ctx context.Context, name string, vectors [][]float32, metadata [][]byte) ([]int64, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("empty batch")
	}

	ids, err := m.conn.Insert(ctx, name, "",
		entity.NewColumnFloatVector(fieldEmbedding, len(vectors[0]), vectors),
		entity.NewColumnJSONBytes(fieldMetadata, metadata),
	)
	if err != nil {
		return nil, err
	}

	column, ok := ids.(*entity.ColumnInt64)
	if !ok {
		return nil, fmt.Errorf("unexpected primary key column type %T", ids)
	}
	return column.Data(), nil
}

// BuildIndex constructs an IVF_FLAT cosine index over the embedding field.
func (m *Milvus) BuildIndex(ctx context.Context, name string) error {
	idx, err := entity.NewIndexIvfFlat(entity.COSINE, indexNList)
	if err != nil {
		return err
	}
	return m.conn.CreateIndex(ctx, name, fieldEmbedding, idx, false)
}

// LoadCollection loads the collection into memory so it is queryable.
func (m *Milvus) LoadCollection(ctx context.Context, name string) error {
	return m.conn.LoadCollection(ctx, name, false)
}

// Close releases the underlying connection.
func (m *Milvus) Close() error {
	return m.conn.Close()
}
