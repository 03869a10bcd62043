package tokenvault_test

import (
	"context"
	"testing"
	"time"

	"github.com/DanielPopoola/racing-academy-payments/internal/application"
	"github.com/DanielPopoola/racing-academy-payments/internal/config"
	"github.com/DanielPopoola/racing-academy-payments/internal/domain"
	"github.com/DanielPopoola/racing-academy-payments/internal/infrastructure/tokenvault"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type RedisVaultTestSuite struct {
	suite.Suite
	container testcontainers.Container
	client    *redis.Client
	vault     *tokenvault.RedisVault
}

func TestRedisVaultSuite(t *testing.T) {
	suite.Run(t, new(RedisVaultTestSuite))
}

func (suite *RedisVaultTestSuite) SetupSuite() {
	ctx := context.Background()
	t := suite.T()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	suite.container = container

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	suite.client, err = tokenvault.NewRedisClient(config.RedisConfig{Addr: endpoint, TokenTTL: time.Hour})
	require.NoError(t, err)
	suite.vault = tokenvault.NewRedisVault(suite.client, time.Hour)
}

func (suite *RedisVaultTestSuite) TearDownSuite() {
	_ = suite.client.Close()
	require.NoError(suite.T(), suite.container.Terminate(context.Background()))
}

func (suite *RedisVaultTestSuite) SetupTest() {
	require.NoError(suite.T(), suite.client.FlushDB(context.Background()).Err())
}

func (suite *RedisVaultTestSuite) Test_PutThenGet() {
	ctx := context.Background()
	t := suite.T()

	require.NoError(t, suite.vault.Put(ctx, domain.PaymentToken{TokenID: "tok-1", CustomerID: "cust-1"}))

	token, err := suite.vault.Get(ctx, "cust-1")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token.TokenID)
	assert.Equal(t, "cust-1", token.CustomerID)

	ttl, err := suite.client.TTL(ctx, "academy:token:cust-1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 59*time.Minute)
}

func (suite *RedisVaultTestSuite) Test_Get_Missing_ReturnsNotFound() {
	_, err := suite.vault.Get(context.Background(), "cust-none")

	assert.ErrorIs(suite.T(), err, application.ErrTokenNotFound)
}

func (suite *RedisVaultTestSuite) Test_Put_ReplacesPreviousToken() {
	ctx := context.Background()
	t := suite.T()

	require.NoError(t, suite.vault.Put(ctx, domain.PaymentToken{TokenID: "tok-1", CustomerID: "cust-2"}))
	require.NoError(t, suite.vault.Put(ctx, domain.PaymentToken{TokenID: "tok-2", CustomerID: "cust-2"}))

	token, err := suite.vault.Get(ctx, "cust-2")
	require.NoError(t, err)
	assert.Equal(t, "tok-2", token.TokenID)
}

func (suite *RedisVaultTestSuite) Test_Forget() {
	ctx := context.Background()
	t := suite.T()

	require.NoError(t, suite.vault.Put(ctx, domain.PaymentToken{TokenID: "tok-3", CustomerID: "cust-3"}))
	require.NoError(t, suite.vault.Forget(ctx, "cust-3"))

	_, err := suite.vault.Get(ctx, "cust-3")
	assert.ErrorIs(t, err, application.ErrTokenNotFound)
}

func (suite *RedisVaultTestSuite) Test_Put_IncompleteToken_Rejected() {
	err := suite.vault.Put(context.Background(), domain.PaymentToken{CustomerID: "cust-4"})

	assert.ErrorIs(suite.T(), err, domain.ErrMissingRequiredField)
}
