package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// mockMongoDuplicateKeyError builds a WriteException carrying code 11000 for the given id.
func mockMongoDuplicateKeyError(id primitive.ObjectID) error {
	mongoErr := mongo.WriteError{
		Code:    11000,
		Message: fmt.Sprintf("E11000 duplicate key error collection: pawmart.listings index: _id_ dup key: { _id: ObjectId('%s') }", id.Hex()),
	}
	return mongo.WriteException{WriteErrors: []mongo.WriteError{mongoErr}}
}

func TestWithRetries_SuccessfulFirstAttempt(t *testing.T) {
	var opCalled int
	operation := func() error {
		opCalled++
		return nil
	}

	err := WithRetries(context.Background(), operation, 3, IsMongoDuplicateKeyError)
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if opCalled != 1 {
		t.Errorf("Expected operation to be called 1 time, got %d", opCalled)
	}
}

func TestWithRetries_FailureNonDuplicateKey(t *testing.T) {
	var opCalled int
	expectedErr := errors.New("connection reset")
	operation := func() error {
		opCalled++
		return expectedErr
	}

	err := WithRetries(context.Background(), operation, 3, IsMongoDuplicateKeyError)
	if !errors.Is(err, expectedErr) {
		t.Errorf("Expected error %v, got %v", expectedErr, err)
	}
	if opCalled != 1 {
		t.Errorf("Expected operation to be called 1 time, got %d", opCalled)
	}
}

func TestWithRetries_ExhaustRetries(t *testing.T) {
	var opCalled int
	collidingID := primitive.NewObjectID()
	operation := func() error {
		opCalled++
		return mockMongoDuplicateKeyError(collidingID)
	}

	maxRetries := 3
	err := WithRetries(context.Background(), operation, maxRetries, IsMongoDuplicateKeyError)
	if err == nil {
		t.Fatal("Expected a duplicate key error, got nil")
	}
	if !IsMongoDuplicateKeyError(err) {
		t.Errorf("Expected a Mongo duplicate key error, got %T: %v", err, err)
	}
	if opCalled != maxRetries+1 {
		t.Errorf("Expected operation to be called %d times, got %d", maxRetries+1, opCalled)
	}
}

func TestWithRetries_CollisionResolves(t *testing.T) {
	taken := primitive.NewObjectID()
	fresh := primitive.NewObjectID()
	ids := []primitive.ObjectID{taken, taken, fresh}

	inserted := map[primitive.ObjectID]bool{taken: true}
	var opCalled int
	operation := func() error {
		id := ids[opCalled]
		opCalled++
		if inserted[id] {
			return mockMongoDuplicateKeyError(id)
		}
		inserted[id] = true
		return nil
	}

	err := Try(context.Background(), operation)
	if err != nil {
		t.Fatalf("Expected collision to resolve, got: %v", err)
	}
	if opCalled != 3 {
		t.Errorf("Expected operation to be called 3 times, got %d", opCalled)
	}
	if !inserted[fresh] {
		t.Errorf("Expected id %s to be inserted after retry", fresh.Hex())
	}
}

func TestWithRetries_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var opCalled int
	operation := func() error {
		opCalled++
		return mockMongoDuplicateKeyError(primitive.NewObjectID())
	}

	err := WithRetries(ctx, operation, 3, IsMongoDuplicateKeyError)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled in %v", err)
	}
	if opCalled != 1 {
		t.Errorf("Expected operation to be called 1 time, got %d", opCalled)
	}
}
