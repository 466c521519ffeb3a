// Package qdrant provides a gRPC client for reading and writing embedding records in a Qdrant
// vector database. Each point stores the embedded text and its creation time as payload, so a
// collection can be read back as a batch of analysis records.
package qdrant

import (
	"context"
	"fmt"
	"time"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/alDuncanson/embscope/analysis"
	"github.com/alDuncanson/embscope/embedding"
)

const (
	textPayloadKey      = "text"
	createdAtPayloadKey = "created_at"

	// scrollPageSize is the number of points fetched per Scroll request.
	scrollPageSize = 256
)

// Client wraps gRPC connections to a Qdrant vector database instance.
type Client struct {
	connection        *grpc.ClientConn
	pointsClient      pb.PointsClient
	collectionsClient pb.CollectionsClient
	collectionName    string
	vectorSize        uint64
}

// Point represents a single stored embedding: a UUID, the original text, the vector and the
// time it was stored.
type Point struct {
	ID        string
	Text      string
	Vector    []float32
	CreatedAt time.Time
}

// Record converts the point into an analysis record labelled with its text.
func (point Point) Record() analysis.Record {
	return analysis.Record{
		ID:        point.ID,
		Label:     point.Text,
		Vector:    embedding.ToFloat64(point.Vector),
		CreatedAt: point.CreatedAt,
	}
}

// PointFromRecord converts an analysis record into a point, using its label as the text.
func PointFromRecord(record analysis.Record) Point {
	return Point{
		ID:        record.ID,
		Text:      record.Label,
		Vector:    embedding.ToFloat32(record.Vector),
		CreatedAt: record.CreatedAt,
	}
}

// NewClient connects to the Qdrant gRPC endpoint at address and ensures the collection
// exists, creating it with cosine distance if necessary.
func NewClient(ctx context.Context, address, collectionName string, vectorSize uint64) (*Client, error) {
	connection, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("connect to qdrant: %w", err)
	}

	client, err := NewClientWithConn(ctx, connection, collectionName, vectorSize)
	if err != nil {
		connection.Close()
		return nil, err
	}
	return client, nil
}

// NewClientWithConn builds a client over an existing connection. The client takes ownership
// of the connection and closes it in Close.
func NewClientWithConn(ctx context.Context, connection *grpc.ClientConn, collectionName string, vectorSize uint64) (*Client, error) {
	client := &Client{
		connection:        connection,
		pointsClient:      pb.NewPointsClient(connection),
		collectionsClient: pb.NewCollectionsClient(connection),
		collectionName:    collectionName,
		vectorSize:        vectorSize,
	}

	if err := client.ensureCollectionExists(ctx); err != nil {
		return nil, err
	}
	return client, nil
}

// ensureCollectionExists creates the collection for cosine similarity unless it is already there.
func (client *Client) ensureCollectionExists(ctx context.Context) error {
	_, err := client.collectionsClient.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: client.collectionName,
	})
	if err == nil {
		return nil
	}

	_, err = client.collectionsClient.Create(ctx, &pb.CreateCollection{
		CollectionName: client.collectionName,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     client.vectorSize,
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create collection %q: %w", client.collectionName, err)
	}
	return nil
}

// Upsert inserts or updates points in one request. A zero CreatedAt is stored as now.
func (client *Client) Upsert(ctx context.Context, points ...Point) error {
	if len(points) == 0 {
		return nil
	}

	now := time.Now().UTC()
	structs := make([]*pb.PointStruct, len(points))
	for i, point := range points {
		createdAt := point.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		structs[i] = &pb.PointStruct{
			Id:      pb.NewID(point.ID),
			Vectors: pb.NewVectorsDense(point.Vector),
			Payload: map[string]*pb.Value{
				textPayloadKey:      pb.NewValueString(point.Text),
				createdAtPayloadKey: pb.NewValueString(createdAt.Format(time.RFC3339Nano)),
			},
		}
	}

	_, err := client.pointsClient.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: client.collectionName,
		Wait:           pb.PtrOf(true),
		Points:         structs,
	})
	if err != nil {
		return fmt.Errorf("upsert %d points: %w", len(points), err)
	}
	return nil
}

// GetAll scrolls through the whole collection and returns every point with its payload and
// vector.
func (client *Client) GetAll(ctx context.Context) ([]Point, error) {
	var (
		points []Point
		offset *pb.PointId
	)

	for {
		scrollResponse, err := client.pointsClient.Scroll(ctx, &pb.ScrollPoints{
			CollectionName: client.collectionName,
			Offset:         offset,
			WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
			WithVectors:    &pb.WithVectorsSelector{SelectorOptions: &pb.WithVectorsSelector_Enable{Enable: true}},
			Limit:          pb.PtrOf(uint32(scrollPageSize)),
		})
		if err != nil {
			return nil, fmt.Errorf("scroll points: %w", err)
		}

		for _, retrievedPoint := range scrollResponse.Result {
			points = append(points, pointFromRetrieved(retrievedPoint))
		}

		offset = scrollResponse.GetNextPageOffset()
		if offset == nil {
			return points, nil
		}
	}
}

func pointFromRetrieved(retrievedPoint *pb.RetrievedPoint) Point {
	point := Point{ID: retrievedPoint.GetId().GetUuid()}

	if textPayload, exists := retrievedPoint.Payload[textPayloadKey]; exists {
		point.Text = textPayload.GetStringValue()
	}
	if createdAtPayload, exists := retrievedPoint.Payload[createdAtPayloadKey]; exists {
		if createdAt, err := time.Parse(time.RFC3339Nano, createdAtPayload.GetStringValue()); err == nil {
			point.CreatedAt = createdAt
		}
	}
	if vectorData := retrievedPoint.GetVectors().GetVector(); vectorData != nil {
		point.Vector = vectorData.GetDense().GetData()
		if point.Vector == nil {
			// Servers older than 1.13 only fill the flat field
			point.Vector = vectorData.GetData()
		}
	}
	return point
}

// Delete removes points from the collection by UUID.
func (client *Client) Delete(ctx context.Context, pointIDs ...string) error {
	ids := make([]*pb.PointId, len(pointIDs))
	for i, pointID := range pointIDs {
		ids[i] = pb.NewID(pointID)
	}

	_, err := client.pointsClient.Delete(ctx, &pb.DeletePoints{
		CollectionName: client.collectionName,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Points{
				Points: &pb.PointsIdsList{Ids: ids},
			},
		},
	})
	return err
}

// Close terminates the gRPC connection to the Qdrant server.
func (client *Client) Close() error {
	return client.connection.Close()
}
