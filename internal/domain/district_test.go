package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDistricts() []District {
	return []District{
		{Region: "서울특별시", Name: "종로구", Lat: 37.5735, Lon: 126.9790, GridX: 60, GridY: 127, BaselineDepth: 0.3},
		{Region: "서울특별시", Name: "강남구", Lat: 37.5172, Lon: 127.0473, GridX: 61, GridY: 126, BaselineDepth: 1.2},
		{Region: "부산광역시", Name: "중구", Lat: 35.1062, Lon: 129.0323, GridX: 97, GridY: 74, BaselineDepth: 0.8},
		{Region: "서울특별시", Name: "중구", Lat: 37.5641, Lon: 126.9979, GridX: 60, GridY: 127, BaselineDepth: 0.4},
	}
}

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry(sampleDistricts())
	require.NoError(t, err)

	assert.Equal(t, []string{"서울특별시", "부산광역시"}, reg.Regions())
	assert.Equal(t, 4, reg.Len())

	seoul, ok := reg.Districts("서울특별시")
	require.True(t, ok)
	require.Len(t, seoul, 3)
	assert.Equal(t, "종로구", seoul[0].Name)
	assert.Equal(t, "강남구", seoul[1].Name)
	assert.Equal(t, "중구", seoul[2].Name)

	all := reg.All()
	require.Len(t, all, 4)
	assert.Equal(t, "부산광역시", all[3].Region)
}

func TestNewRegistry_SameDistrictNameInDifferentRegions(t *testing.T) {
	reg, err := NewRegistry(sampleDistricts())
	require.NoError(t, err)

	seoulJung, ok := reg.Lookup("서울특별시", "중구")
	require.True(t, ok)
	busanJung, ok := reg.Lookup("부산광역시", "중구")
	require.True(t, ok)

	assert.InDelta(t, 0.4, seoulJung.BaselineDepth, 1e-9)
	assert.InDelta(t, 0.8, busanJung.BaselineDepth, 1e-9)
}

func TestNewRegistry_DerivesGrid(t *testing.T) {
	reg, err := NewRegistry([]District{
		{Region: "제주특별자치도", Name: "제주시", Lat: 33.4996, Lon: 126.5312, BaselineDepth: 0.2},
	})
	require.NoError(t, err)

	d, ok := reg.Lookup("제주특별자치도", "제주시")
	require.True(t, ok)
	assert.Equal(t, 53, d.GridX)
	assert.Equal(t, 38, d.GridY)
}

func TestNewRegistry_TrimsNames(t *testing.T) {
	reg, err := NewRegistry([]District{
		{Region: " 서울특별시 ", Name: "종로구\t", Lat: 37.5735, Lon: 126.9790, GridX: 60, GridY: 127},
	})
	require.NoError(t, err)

	_, ok := reg.Lookup("서울특별시", "종로구")
	assert.True(t, ok)
}

func TestNewRegistry_Invalid(t *testing.T) {
	valid := District{Region: "서울특별시", Name: "종로구", Lat: 37.5735, Lon: 126.9790, GridX: 60, GridY: 127, BaselineDepth: 0.3}

	tests := []struct {
		name   string
		mutate func(d *District)
	}{
		{"empty region", func(d *District) { d.Region = "" }},
		{"blank district", func(d *District) { d.Name = "  " }},
		{"latitude out of range", func(d *District) { d.Lat = 91 }},
		{"longitude out of range", func(d *District) { d.Lon = -181 }},
		{"missing coordinates", func(d *District) { d.Lat, d.Lon, d.GridX, d.GridY = 0, 0, 1, 1 }},
		{"negative grid", func(d *District) { d.GridX = -1 }},
		{"negative baseline", func(d *District) { d.BaselineDepth = -0.1 }},
		{"NaN baseline", func(d *District) { d.BaselineDepth = math.NaN() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			tt.mutate(&d)

			_, err := NewRegistry([]District{d})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidDistrict)
		})
	}
}

func TestNewRegistry_Duplicate(t *testing.T) {
	ds := sampleDistricts()
	ds = append(ds, ds[1])

	_, err := NewRegistry(ds)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDistrict)
	assert.Contains(t, err.Error(), "강남구")
}

func TestRegistry_LookupMiss(t *testing.T) {
	reg, err := NewRegistry(sampleDistricts())
	require.NoError(t, err)

	_, ok := reg.Lookup("서울특별시", "해운대구")
	assert.False(t, ok)
	_, ok = reg.Lookup("대구광역시", "중구")
	assert.False(t, ok)
	_, ok = reg.Districts("대구광역시")
	assert.False(t, ok)
}

func TestRegistry_ReturnsCopies(t *testing.T) {
	reg, err := NewRegistry(sampleDistricts())
	require.NoError(t, err)

	regions := reg.Regions()
	regions[0] = "changed"
	ds, _ := reg.Districts("서울특별시")
	ds[0].BaselineDepth = 99

	assert.Equal(t, "서울특별시", reg.Regions()[0])
	d, _ := reg.Lookup("서울특별시", "종로구")
	assert.InDelta(t, 0.3, d.BaselineDepth, 1e-9)
}

func TestRegistry_Nearest(t *testing.T) {
	reg, err := NewRegistry(sampleDistricts())
	require.NoError(t, err)

	d, km, ok := reg.Nearest(37.52, 127.05)
	require.True(t, ok)
	assert.Equal(t, "강남구", d.Name)
	assert.Less(t, km, 1.0)

	d, _, ok = reg.Nearest(35.2, 129.1)
	require.True(t, ok)
	assert.Equal(t, "부산광역시", d.Region)
}

func TestRegistry_NearestEmpty(t *testing.T) {
	reg, err := NewRegistry(nil)
	require.NoError(t, err)

	_, _, ok := reg.Nearest(37.5, 127.0)
	assert.False(t, ok)
	assert.Equal(t, 0, reg.Len())
	assert.Empty(t, reg.All())
}
