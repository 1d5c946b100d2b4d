//go:generate mockgen -source=../order_store.go      -destination=./mock_order_store.go      -package=mocks
//go:generate mockgen -source=../user_store.go       -destination=./mock_user_store.go       -package=mocks
//go:generate mockgen -source=../cache.go            -destination=./mock_cache.go            -package=mocks
//go:generate mockgen -source=../order_repository.go -destination=./mock_order_repository.go -package=mocks
//go:generate mockgen -source=../event_publisher.go  -destination=./mock_event_publisher.go  -package=mocks
//go:generate mockgen -source=../auth_provider.go    -destination=./mock_auth_provider.go    -package=mocks
//go:generate mockgen -source=../order_service.go    -destination=./mock_order_service.go    -package=mocks
//go:generate mockgen -source=../auth_service.go     -destination=./mock_auth_service.go     -package=mocks
//go:generate mockgen -source=../validator.go        -destination=./mock_validator.go        -package=mocks
//go:generate mockgen -source=../message_consumer.go -destination=./mock_message_consumer.go -package=mocks

package mocks
