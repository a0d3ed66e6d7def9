package assets

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Karethoth/noirion-backend/pkg/db/models"
)

func strPtr(v string) *string {
	return &v
}

func timePtr(v time.Time) *time.Time {
	return &v
}

func baseAsset() models.Asset {
	return models.Asset{
		ID:        uuid.New(),
		FileName:  "IMG_0001.jpg",
		MimeType:  "image/jpeg",
		CreatedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestResolveEffectiveOverrideTimeWins(t *testing.T) {
	asset := baseAsset()
	asset.CapturedAt = timePtr(time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))
	overrideAt := time.Date(2025, 2, 28, 18, 30, 0, 0, time.UTC)

	effective := ResolveEffective(asset, &models.AssetOverride{CapturedAt: &overrideAt})

	require.NotNil(t, effective.ObservedAt)
	assert.Equal(t, overrideAt, *effective.ObservedAt)
}

func TestResolveEffectiveFallsBackToUploadTime(t *testing.T) {
	asset := baseAsset()

	effective := ResolveEffective(asset, nil)

	require.NotNil(t, effective.ObservedAt)
	assert.Equal(t, asset.CreatedAt, *effective.ObservedAt)
}

func TestResolveEffectiveOverrideCoordinatesWinAsPair(t *testing.T) {
	asset := baseAsset()
	asset.Latitude = floatPtr(60.0)
	asset.Longitude = floatPtr(24.0)

	effective := ResolveEffective(asset, &models.AssetOverride{
		Latitude:  floatPtr(61.0),
		Longitude: floatPtr(25.0),
	})

	assert.Equal(t, 61.0, *effective.Latitude)
	assert.Equal(t, 25.0, *effective.Longitude)
}

func TestResolveEffectiveHalfPairOverrideIsIgnored(t *testing.T) {
	asset := baseAsset()
	asset.Latitude = floatPtr(60.0)
	asset.Longitude = floatPtr(24.0)

	effective := ResolveEffective(asset, &models.AssetOverride{Latitude: floatPtr(61.0)})

	assert.Equal(t, 60.0, *effective.Latitude)
	assert.Equal(t, 24.0, *effective.Longitude)
}

func TestResolveEffectiveDisplayNameFallsBackToFileName(t *testing.T) {
	asset := baseAsset()

	assert.Equal(t, "IMG_0001.jpg", ResolveEffective(asset, nil).DisplayName)
	assert.Equal(t, "front door", ResolveEffective(asset, &models.AssetOverride{
		DisplayName: strPtr("front door"),
	}).DisplayName)
}

func TestDeviceKeyRequiresBothParts(t *testing.T) {
	asset := baseAsset()
	asset.CameraMake = strPtr("Acme")
	assert.Equal(t, "", ResolveEffective(asset, nil).DeviceKey)

	asset.CameraModel = strPtr("X100")
	assert.Equal(t, "acme x100", ResolveEffective(asset, nil).DeviceKey)
}
