// Copyright © 2021 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestInitConfigOK(t *testing.T) {
	viper.Reset()
	err := ReadConfig("")
	assert.Regexp(t, "Not Found", err)
}

func TestDefaults(t *testing.T) {
	cwd, _ := os.Getwd()
	defer os.Chdir(cwd)
	os.Chdir("../../test/config")
	err := ReadConfig("")
	assert.NoError(t, err)

	assert.Equal(t, "info", GetString(LogLevel))
	assert.True(t, GetBool(LogColor))
	assert.Equal(t, uint(0), GetUint(HTTPPort))
	assert.Equal(t, int(0), GetInt(DebugPort))
	assert.Equal(t, float64(2.0), GetFloat64(BufferRetryFactor))
	assert.Equal(t, []string{"*"}, GetStringSlice(CorsAllowedOrigins))
	assert.Equal(t, "NEWS", GetString(ReplenisherSymbol))
	assert.Equal(t, int64(500), GetInt64(ReplenisherDefaultFee))
}

func TestSpecificConfigFileOk(t *testing.T) {
	err := ReadConfig("../../test/config/mintbuffer.yaml")
	assert.NoError(t, err)
	assert.Equal(t, "sqlite", GetString(DatabaseType))
}

func TestSpecificConfigFileFail(t *testing.T) {
	err := ReadConfig("../../test/config/no.hope.yaml")
	assert.Error(t, err)
}

func TestAttemptToAccessRandomKey(t *testing.T) {
	assert.Panics(t, func() {
		GetString("any.key")
	})
}

func TestSetGetMap(t *testing.T) {
	defer Reset()
	Set(Database, map[string]interface{}{"some": "map"})
	assert.Equal(t, map[string]interface{}{"some": "map"}, GetStringMap(Database))
}

func TestSetGetRawInterace(t *testing.T) {
	defer Reset()
	type myType struct{ name string }
	Set(Database, &myType{name: "test"})
	v := Get(Database)
	assert.Equal(t, myType{name: "test"}, *(v.(*myType)))
}

func TestDurations(t *testing.T) {
	Reset()
	assert.Equal(t, 50*time.Millisecond, GetDuration(BufferRetryInitDelay))
	Set(BufferRetryInitDelay, 250)
	assert.Equal(t, 250*time.Millisecond, GetDuration(BufferRetryInitDelay))
	Set(BufferRetryInitDelay, "2m")
	assert.Equal(t, 2*time.Minute, GetDuration(BufferRetryInitDelay))
}

func TestByteSizes(t *testing.T) {
	Reset()
	assert.Equal(t, int64(16*1024), GetByteSize(WebsocketReadBufferSize))
	Set(WebsocketReadBufferSize, "bad")
	assert.Equal(t, int64(0), GetByteSize(WebsocketReadBufferSize))
}

func TestPluginConfig(t *testing.T) {
	pic := NewPluginConfig("my")
	pic.AddKnownKey("special.config", 12345)
	assert.Equal(t, 12345, pic.GetInt("special.config"))
	assert.Equal(t, "my.special.config", pic.Resolve("special.config"))
}

func TestPluginConfigArrayInit(t *testing.T) {
	pic := NewPluginConfig("my").SubPrefix("special")
	pic.AddKnownKey("config", "val1", "val2", "val3")
	assert.Equal(t, []string{"val1", "val2", "val3"}, pic.GetStringSlice("config"))
}

func TestUnmarshalKey(t *testing.T) {
	defer Reset()
	pic := NewPluginConfig("unmarshal")
	pic.AddKnownKey("nested")
	pic.Set("nested", map[string]interface{}{"hello": "world"})
	var out struct {
		Hello string `json:"hello"`
	}
	err := pic.UnmarshalKey(context.Background(), "nested", &out)
	assert.NoError(t, err)
	assert.Equal(t, "world", out.Hello)

	pic.Set("nested", "not a map")
	err = pic.UnmarshalKey(context.Background(), "nested", &out)
	assert.Regexp(t, "FF10101", err)
}

func TestGetKnownKeys(t *testing.T) {
	knownKeys := GetKnownKeys()
	assert.NotEmpty(t, knownKeys)
	for _, k := range knownKeys {
		assert.NotEmpty(t, root.Resolve(k))
	}
}

func TestSetupLogging(t *testing.T) {
	Reset()
	Set(LogLevel, "debug")
	Set(LogUTC, true)
	SetupLogging(context.Background())
	Set(LogLevel, "info")
	SetupLogging(context.Background())
}
