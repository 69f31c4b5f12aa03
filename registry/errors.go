package registry

import "errors"

var (
	// ErrConfigMissing indicates a required configuration entry is absent.
	ErrConfigMissing = errors.New("registry: config missing")

	// ErrInvalidParcelID indicates an id outside [1, max parcels].
	ErrInvalidParcelID = errors.New("registry: invalid parcel id")

	// ErrDuplicateMint indicates the parcel already has a geo record.
	ErrDuplicateMint = errors.New("registry: duplicate mint")

	// ErrOwnerMissing indicates the administrative identity is not set.
	ErrOwnerMissing = errors.New("registry: owner missing")

	// ErrPaymentTokenMissing indicates the payment token address is not set.
	ErrPaymentTokenMissing = errors.New("registry: payment token missing")

	// ErrPriceMissing indicates the parcel price is not set.
	ErrPriceMissing = errors.New("registry: price missing")

	// ErrMetricsNotFound indicates the oracle holds no record for the parcel.
	ErrMetricsNotFound = errors.New("registry: metrics not found")

	// ErrGeoNotFound indicates the parcel has no geo record.
	ErrGeoNotFound = errors.New("registry: geo not found")

	// ErrInvalidConfig indicates constructor arguments that cannot form a registry.
	ErrInvalidConfig = errors.New("registry: invalid config")
)
