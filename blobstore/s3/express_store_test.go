package s3

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestExpressStore_PutIfNotExists(t *testing.T) {
	t.Run("Created", func(t *testing.T) {
		mockClient := new(MockS3Client)
		store := NewExpressStore(mockClient, "bucket--use1-az4--x-s3", "crosscat")

		mockClient.On("PutObject", mock.Anything, mock.MatchedBy(func(input *s3.PutObjectInput) bool {
			return *input.Key == "crosscat/CURRENT" && input.IfNoneMatch != nil && *input.IfNoneMatch == "*"
		})).Return(&s3.PutObjectOutput{}, nil).Once()

		err := store.PutIfNotExists(context.Background(), "CURRENT", []byte("chk-000001"))
		assert.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("Conflict", func(t *testing.T) {
		mockClient := new(MockS3Client)
		store := NewExpressStore(mockClient, "bucket--use1-az4--x-s3", "crosscat")

		mockClient.On("PutObject", mock.Anything, mock.Anything).
			Return(nil, &smithy.GenericAPIError{Code: "PreconditionFailed"}).Once()

		err := store.PutIfNotExists(context.Background(), "CURRENT", []byte("chk-000002"))
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("OtherError", func(t *testing.T) {
		mockClient := new(MockS3Client)
		store := NewExpressStore(mockClient, "bucket--use1-az4--x-s3", "crosscat")

		mockClient.On("PutObject", mock.Anything, mock.Anything).
			Return(nil, &smithy.GenericAPIError{Code: "AccessDenied"}).Once()

		err := store.PutIfNotExists(context.Background(), "CURRENT", []byte("chk-000002"))
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrConflict)
	})
}
