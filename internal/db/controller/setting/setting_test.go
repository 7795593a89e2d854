package setting

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GoSlider/GoSlider/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every new connection would get its own empty in-memory database
	sqlDB.SetMaxOpenConns(1)

	// Migrate the schema
	err = db.AutoMigrate(&models.Setting{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// seedSettings inserts test data into the database.
func seedSettings(t *testing.T, db *gorm.DB, settings []models.Setting) {
	t.Helper()

	for _, setting := range settings {
		err := db.Create(&setting).Error
		require.NoError(t, err, "failed to seed test data")
	}
}

func TestGet(t *testing.T) {
	db := setupTestDB(t)

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		settingName   string
		seedData      []models.Setting
		expectedError error
		expectedValue []byte
	}{
		{
			name:          "nil database",
			dbParam:       nil,
			settingName:   "test",
			expectedError: ErrDBNil,
		},
		{
			name:          "empty name",
			dbParam:       db,
			settingName:   "",
			expectedError: ErrSettingNameEmpty,
		},
		{
			name:          "setting not found",
			dbParam:       db,
			settingName:   "nonexistent",
			expectedError: ErrSettingNotFound,
		},
		{
			name:        "successful get",
			dbParam:     db,
			settingName: "site_name",
			seedData: []models.Setting{
				{Name: "site_name", Value: []byte("My Site")},
			},
			expectedValue: []byte("My Site"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Clean database for each test
			if tc.dbParam != nil {
				tc.dbParam.Exec("DELETE FROM settings")
			}

			if tc.seedData != nil {
				seedSettings(t, tc.dbParam, tc.seedData)
			}

			setting, err := Get(tc.dbParam, tc.settingName)

			if tc.expectedError != nil {
				require.Error(t, err)
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, setting)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, setting)
				assert.Equal(t, tc.settingName, setting.Name)
				assert.Equal(t, tc.expectedValue, setting.Value)
			}
		})
	}
}

func TestSet(t *testing.T) {
	db := setupTestDB(t)

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		settingName   string
		settingValue  []byte
		seedData      []models.Setting
		expectedError error
		expectCreate  bool
	}{
		{
			name:          "nil database",
			dbParam:       nil,
			settingName:   "test",
			settingValue:  []byte("value"),
			expectedError: ErrDBNil,
		},
		{
			name:          "empty name",
			dbParam:       db,
			settingName:   "",
			settingValue:  []byte("value"),
			expectedError: ErrSettingNameEmpty,
		},
		{
			name:         "create new setting",
			dbParam:      db,
			settingName:  "new_setting",
			settingValue: []byte("new_value"),
			expectCreate: true,
		},
		{
			name:         "update existing setting",
			dbParam:      db,
			settingName:  "site_name",
			settingValue: []byte("Updated Site"),
			seedData: []models.Setting{
				{Name: "site_name", Value: []byte("My Site")},
			},
			expectCreate: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.dbParam != nil {
				tc.dbParam.Exec("DELETE FROM settings")
			}

			if tc.seedData != nil {
				seedSettings(t, tc.dbParam, tc.seedData)
			}

			setting, err := Set(tc.dbParam, tc.settingName, tc.settingValue)

			if tc.expectedError != nil {
				require.Error(t, err)
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, setting)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, setting)
				assert.Equal(t, tc.settingName, setting.Name)
				assert.Equal(t, tc.settingValue, setting.Value)

				// Verify the setting was created or updated in the database
				var dbSetting models.Setting
				err = tc.dbParam.Where("name = ?", tc.settingName).First(&dbSetting).Error
				require.NoError(t, err)
				assert.Equal(t, tc.settingValue, dbSetting.Value)
			}
		})
	}
}

func TestDeleteByName(t *testing.T) {
	db := setupTestDB(t)

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		settingName   string
		seedData      []models.Setting
		expectedError error
	}{
		{
			name:          "nil database",
			dbParam:       nil,
			settingName:   "test",
			expectedError: ErrDBNil,
		},
		{
			name:          "empty name",
			dbParam:       db,
			settingName:   "",
			expectedError: ErrSettingNameEmpty,
		},
		{
			name:          "setting not found",
			dbParam:       db,
			settingName:   "nonexistent",
			expectedError: ErrSettingNotFound,
		},
		{
			name:        "successful delete",
			dbParam:     db,
			settingName: "site_name",
			seedData: []models.Setting{
				{Name: "site_name", Value: []byte("My Site")},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.dbParam != nil {
				tc.dbParam.Exec("DELETE FROM settings")
			}

			if tc.seedData != nil {
				seedSettings(t, tc.dbParam, tc.seedData)
			}

			err := DeleteByName(tc.dbParam, tc.settingName)

			if tc.expectedError != nil {
				require.Error(t, err)
				require.ErrorIs(t, err, tc.expectedError)
			} else {
				require.NoError(t, err)

				// Verify the setting was deleted
				var count int64
				tc.dbParam.Model(&models.Setting{}).Where("name = ?", tc.settingName).Count(&count)
				assert.Zero(t, count)
			}
		})
	}
}

func TestIntegration(t *testing.T) {
	db := setupTestDB(t)

	_, err := Set(db, "slider_config_7", []byte(`{"effect":"fade"}`))
	require.NoError(t, err)

	_, err = Set(db, "slider_config_7", []byte(`{"effect":"slide"}`))
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Setting{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	s, err := Get(db, "slider_config_7")
	require.NoError(t, err)
	assert.JSONEq(t, `{"effect":"slide"}`, string(s.Value))

	require.NoError(t, DeleteByName(db, "slider_config_7"))

	_, err = Get(db, "slider_config_7")
	require.ErrorIs(t, err, ErrSettingNotFound)
}
