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

package i18n

//revive:disable
var (
	MsgConfigFailed               = ffm("FF10101", "Failed to read config: %s")
	MsgJSONDecodeFailed           = ffm("FF10103", "Failed to decode input JSON", sBadRequest)
	MsgAPIServerStartFailed       = ffm("FF10104", "Unable to start listener on %s")
	MsgTLSConfigFailed            = ffm("FF10105", "Failed to initialize TLS configuration")
	MsgInvalidCAFile              = ffm("FF10106", "Invalid CA certificates file")
	MsgResponseMarshalError       = ffm("FF10107", "Failed to serialize response data", sBadRequest)
	MsgWebsocketClientError       = ffm("FF10108", "Error received from WebSocket client: %s")
	Msg404NotFound                = ffm("FF10109", "Not found", sNotFound)
	MsgUnknownDatabasePlugin      = ffm("FF10110", "Unknown database plugin '%s'")
	MsgDBInitFailed               = ffm("FF10112", "Database initialization failed")
	MsgDBQueryBuildFailed         = ffm("FF10113", "Database query builder failed")
	MsgDBBeginFailed              = ffm("FF10114", "Database begin transaction failed")
	MsgDBQueryFailed              = ffm("FF10115", "Database query failed")
	MsgDBInsertFailed             = ffm("FF10116", "Database insert failed")
	MsgDBUpdateFailed             = ffm("FF10117", "Database update failed")
	MsgDBCommitFailed             = ffm("FF10119", "Database commit failed")
	MsgDBMissingJoin              = ffm("FF10120", "Database missing expected join entry in table '%s' for id '%s'")
	MsgDBReadErr                  = ffm("FF10121", "Database resultset read error from table '%s'")
	MsgDBVersionConflict          = ffm("FF10123", "Stored record version does not match the expected version", sConflict)
	MsgDBDuplicateKey             = ffm("FF10124", "A record with the same key already exists", sConflict)
	MsgDBMigrationFailed          = ffm("FF10126", "Database migration failed")
	MsgDBSerializeFailed          = ffm("FF10127", "Failed to serialize '%s' for storage")
	MsgRedisOpFailed              = ffm("FF10128", "Redis operation failed")
	MsgDynamoOpFailed             = ffm("FF10129", "DynamoDB operation failed")
	MsgUnknownAssetsPlugin        = ffm("FF10122", "Unknown assets plugin '%s'")
	MsgInvalidContentType         = ffm("FF10130", "Invalid content type", http415)
	MsgSuccessResponse            = ffm("FF10134", "Success")
	MsgErrorResponse              = ffm("FF10135", "Error")
	Msg404NoResult                = ffm("FF10143", "No result found", sNotFound)
	MsgMissingPluginConfig        = ffm("FF10138", "Missing configuration '%s' for %s")
	MsgInitializationNilDepError  = ffm("FF10139", "Initialization error due to unmet dependency for %s")
	MsgInvalidUUID                = ffm("FF10142", "Invalid UUID supplied", sBadRequest)
	MsgTimeParseFail              = ffm("FF10165", "Cannot parse time as RFC3339, Unix, or UnixNano: '%s'", sBadRequest)
	MsgScanFailed                 = ffm("FF10125", "Failed to restore type '%T' into '%T'")
	MsgInvalidName                = ffm("FF10131", "Field '%s' must be 1-64 characters, including alphanumerics (a-zA-Z0-9), dot (.), dash (-) and underscore (_), and must start/end in an alphanumeric", sBadRequest)
	MsgNoUUID                     = ffm("FF10132", "Field '%s' must not be a UUID", sBadRequest)
	MsgInvalidIdentity            = ffm("FF10133", "Invalid identity '%s' for field '%s'", sBadRequest)
	MsgRequestTimeout             = ffm("FF10230", "The request with id '%s' timed out after %.2fms", http408)
	MsgContextCanceled            = ffm("FF10159", "Context cancelled")
	MsgInvalidWebSocketMessage    = ffm("FF10160", "Invalid message on websocket connection: %s")
	MsgWSClosing                  = ffm("FF10161", "Websocket closing")
	MsgInvalidURL                 = ffm("FF10162", "Invalid URL: '%s'")
	MsgInvalidSizeConfig          = ffm("FF10163", "Invalid size configuration '%s' for key '%s'")
	MsgInvalidPathParam           = ffm("FF10164", "Invalid path parameter '%s': %s", sBadRequest)
	MsgInvalidQueryParam          = ffm("FF10166", "Invalid query parameter '%s': %s", sBadRequest)
	MsgRESTCallFailed             = ffm("FF10170", "REST call to '%s' failed with status %d: %s")
	MsgRESTCallError              = ffm("FF10171", "REST call failed: %s")
	MsgImageServicePayloadInvalid = ffm("FF10172", "Image service returned an invalid payload: %s")
	MsgEventSinkFailed            = ffm("FF10173", "Failed to deliver event to sink '%s'")
	MsgSubscriberExists           = ffm("FF10174", "Event subscriber '%s' already exists")
	MsgSubscriberNotFound         = ffm("FF10175", "Event subscriber '%s' not found")
	MsgEventBusClosed             = ffm("FF10176", "Event bus is closed")
	MsgNilSubscriberChannel       = ffm("FF10177", "Event subscriber '%s' supplied a nil channel")
	MsgKinesisPutFailed           = ffm("FF10178", "Failed to put record on Kinesis stream '%s'")
	MsgRedisPublishFailed         = ffm("FF10179", "Failed to publish to Redis channel '%s'")
	MsgSolanaRPCErr               = ffm("FF10180", "Solana RPC request failed: %s")
	MsgSolanaInvalidKey           = ffm("FF10181", "Invalid Solana key material for '%s'")
	MsgSolanaTxSubmitFailed       = ffm("FF10182", "Failed to submit Solana transaction for mint '%s'")
	MsgSimulatedAssetFailure      = ffm("FF10183", "Simulated asset failure for operation '%s'")
	MsgAssetNotFound              = ffm("FF10184", "Asset '%s' not found")
	MsgAssetMetadataExists        = ffm("FF10185", "Descriptive record already attached to asset '%s'")

	MsgUnauthorizedAccess  = ffm("FF10200", "Unauthorized access to this operation", sForbidden)
	MsgBufferFull          = ffm("FF10201", "Buffer is full, cannot add more NFTs", sConflict)
	MsgEmptyBuffer         = ffm("FF10202", "No NFTs available in the buffer", sConflict)
	MsgInvalidMetadata     = ffm("FF10203", "Invalid metadata provided", sBadRequest)
	MsgMintFailed          = ffm("FF10204", "Minting failed")
	MsgBufferNotFound      = ffm("FF10205", "Buffer '%s' not found", sNotFound)
	MsgBufferExists        = ffm("FF10206", "Buffer '%s' already initialized", sConflict)
	MsgInvalidBufferSize   = ffm("FF10207", "Buffer size must be a positive integer: %d", sBadRequest)
	MsgInvalidThreshold    = ffm("FF10208", "Minimum buffer threshold %d must not exceed buffer size %d", sBadRequest)
	MsgBufferStateConflict = ffm("FF10209", "Buffer '%s' was modified concurrently (expected version %d)", sConflict)
	MsgMintNotCommitted    = ffm("FF10210", "Asset '%s' was issued but buffer '%s' could not be updated", sConflict)

	MsgRoutePostBuffer     = ffm("FF10240", "Initializes a new buffer, with its authority, size, threshold and collection")
	MsgRouteGetBuffers     = ffm("FF10241", "Lists the buffers, sorted by name")
	MsgRouteGetBuffer      = ffm("FF10242", "Gets the current state of a buffer, including its pending queue")
	MsgRoutePostPending    = ffm("FF10243", "Appends a descriptor to the pending queue of a buffer. Only the buffer authority may call this")
	MsgRoutePostMint       = ffm("FF10244", "Mints a unique asset from the descriptor at the head of the pending queue")
	MsgRouteGetMints       = ffm("FF10245", "Lists the mint records of a buffer, newest first")
	MsgRouteGetStatus      = ffm("FF10246", "Gets the status of this node, and the plugins it runs")
	MsgPathParamBufferName = ffm("FF10247", "The name of the buffer")
	MsgQueryParamSkip      = ffm("FF10248", "The number of records to skip")
	MsgQueryParamLimit     = ffm("FF10249", "The maximum number of records to return")
	MsgInvalidOutputOption = ffm("FF10250", "Invalid output option '%s'")
)

const (
	http408 = 408
	http415 = 415
)
