package main_test

import (
	"bytes"
	"strings"
	"testing"

	"gorm.io/gorm"

	servercmd "github.com/MarkoPoloResearchLab/widget_svc/cmd/server"
	"github.com/MarkoPoloResearchLab/widget_svc/internal/storage"
)

const (
	testEnvironmentKeyDatabaseDataSourceName = "DB_DSN"
	testEnvironmentKeySessionSecret          = "SESSION_SECRET"
	testPlaceholderDatabaseDSN               = "file:server-test?mode=memory"
	testPlaceholderSessionSecret             = "very-secret-session-key"
	testMissingConfigurationMessage          = "missing required configuration"
	testFlagNameDatabaseDataSource           = "db-dsn"
	testFlagNameSessionSecret                = "session-secret"
	testFlagIndicator                        = "--"
	testUsagePrefix                          = "Usage:"
)

func TestServerCommandMissingConfigurationShowsHelp(t *testing.T) {
	testCases := []struct {
		name                   string
		databaseDataSourceName string
		sessionSecret          string
		expectedMissingFlag    string
	}{
		{
			name:                   "missing database dsn",
			databaseDataSourceName: "",
			sessionSecret:          testPlaceholderSessionSecret,
			expectedMissingFlag:    testFlagNameDatabaseDataSource,
		},
		{
			name:                   "missing session secret",
			databaseDataSourceName: testPlaceholderDatabaseDSN,
			sessionSecret:          "",
			expectedMissingFlag:    testFlagNameSessionSecret,
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Setenv(testEnvironmentKeyDatabaseDataSourceName, testCase.databaseDataSourceName)
			t.Setenv(testEnvironmentKeySessionSecret, testCase.sessionSecret)

			databaseOpenerStub := func(configuration storage.Config) (*gorm.DB, error) {
				t.Fatalf("database opener invoked with %s", configuration.DataSourceName)
				return nil, nil
			}

			application := servercmd.NewServerApplication().WithDatabaseOpener(databaseOpenerStub)
			command, commandErr := application.Command()
			if commandErr != nil {
				t.Fatalf("unexpected command construction error: %v", commandErr)
			}

			commandOutput := &bytes.Buffer{}
			command.SetOut(commandOutput)
			command.SetErr(commandOutput)

			executionErr := command.Execute()
			if executionErr == nil {
				t.Fatalf("expected error for missing configuration")
			}

			combinedOutput := commandOutput.String()
			if !strings.Contains(combinedOutput, testMissingConfigurationMessage) {
				t.Fatalf("expected combined output to mention missing configuration: %s", combinedOutput)
			}

			if !strings.Contains(combinedOutput, testUsagePrefix) {
				t.Fatalf("expected combined output to include usage instructions: %s", combinedOutput)
			}

			expectedFlagIndicator := testFlagIndicator + testCase.expectedMissingFlag
			if !strings.Contains(combinedOutput, expectedFlagIndicator) {
				t.Fatalf("expected help output to include flag %s, actual output: %s", expectedFlagIndicator, combinedOutput)
			}
		})
	}
}
