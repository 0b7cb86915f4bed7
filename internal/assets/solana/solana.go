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

package solana

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"strings"

	"github.com/akamensky/base58"
	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/associated_token_account"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/kaleido-io/mintbuffer/internal/config"
	"github.com/kaleido-io/mintbuffer/internal/i18n"
	"github.com/kaleido-io/mintbuffer/internal/log"
	"github.com/kaleido-io/mintbuffer/pkg/fftypes"
)

const (
	// SolanaConfRPCURL is the JSON/RPC endpoint of the cluster
	SolanaConfRPCURL = "rpcURL"
	// SolanaConfPayerKey is the fee payer secret key, as base58 or a JSON byte array. The payer
	// is also the mint, freeze and update authority of every asset the plugin issues.
	SolanaConfPayerKey = "payerKey"
)

// RPC is the part of the cluster client the plugin uses
type RPC interface {
	GetMinimumBalanceForRentExemption(ctx context.Context, dataLen uint64) (uint64, error)
	GetLatestBlockhash(ctx context.Context) (rpc.GetLatestBlockhashValue, error)
	SendTransaction(ctx context.Context, tx types.Transaction) (string, error)
}

type Solana struct {
	rpc   RPC
	payer types.Account
}

func (s *Solana) Name() string {
	return "solana"
}

func (s *Solana) InitPrefix(prefix config.Prefix) {
	prefix.AddKnownKey(SolanaConfRPCURL, rpc.DevnetRPCEndpoint)
	prefix.AddKnownKey(SolanaConfPayerKey)
}

func (s *Solana) Init(ctx context.Context, prefix config.Prefix) (err error) {
	key := prefix.GetString(SolanaConfPayerKey)
	if key == "" {
		return i18n.NewError(ctx, i18n.MsgMissingPluginConfig, SolanaConfPayerKey, s.Name())
	}
	if s.payer, err = accountFromSecret(ctx, key); err != nil {
		return err
	}
	if s.rpc == nil {
		s.rpc = client.NewClient(prefix.GetString(SolanaConfRPCURL))
	}
	log.L(ctx).Infof("Solana assets plugin using payer %s", s.payer.PublicKey.ToBase58())
	return nil
}

// accountFromSecret accepts the base58 form printed by most wallets, or the JSON
// byte array written by the CLI keygen
func accountFromSecret(ctx context.Context, secret string) (types.Account, error) {
	var keyBytes []byte
	secret = strings.TrimSpace(secret)
	if strings.HasPrefix(secret, "[") {
		var ints []int
		if err := json.Unmarshal([]byte(secret), &ints); err == nil {
			keyBytes = make([]byte, len(ints))
			for i, v := range ints {
				keyBytes[i] = byte(v)
			}
		}
	} else {
		keyBytes, _ = base58.Decode(secret)
	}
	if len(keyBytes) != ed25519.PrivateKeySize {
		return types.Account{}, i18n.NewError(ctx, i18n.MsgSolanaInvalidKey, SolanaConfPayerKey)
	}
	account, err := types.AccountFromBytes(keyBytes)
	if err != nil {
		return types.Account{}, i18n.WrapError(ctx, err, i18n.MsgSolanaInvalidKey, SolanaConfPayerKey)
	}
	return account, nil
}

func publicKey(ctx context.Context, identity, fieldName string) (common.PublicKey, error) {
	b, err := base58.Decode(identity)
	if err != nil || len(b) != common.PublicKeyLength {
		return common.PublicKey{}, i18n.NewError(ctx, i18n.MsgSolanaInvalidKey, fieldName)
	}
	return common.PublicKeyFromBytes(b), nil
}

func (s *Solana) submit(ctx context.Context, mint string, signers []types.Account, instructions ...types.Instruction) (string, error) {
	recent, err := s.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return "", i18n.WrapError(ctx, err, i18n.MsgSolanaRPCErr, "getLatestBlockhash")
	}
	tx, err := types.NewTransaction(types.NewTransactionParam{
		Signers: signers,
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        s.payer.PublicKey,
			RecentBlockhash: recent.Blockhash,
			Instructions:    instructions,
		}),
	})
	if err == nil {
		var sig string
		if sig, err = s.rpc.SendTransaction(ctx, tx); err == nil {
			log.L(ctx).Debugf("Submitted transaction %s for mint %s", sig, mint)
			return sig, nil
		}
	}
	return "", i18n.WrapError(ctx, err, i18n.MsgSolanaTxSubmitFailed, mint)
}

// CreateUniqueAsset creates a new zero decimal mint, with the payer as mint authority, and issues
// a single unit into the owner's associated token account
func (s *Solana) CreateUniqueAsset(ctx context.Context, owner string, creatorBump uint8) (*fftypes.AssetRef, error) {
	ownerKey, err := publicKey(ctx, owner, "owner")
	if err != nil {
		return nil, err
	}
	log.L(ctx).Debugf("Creating asset for %s (creator bump %d)", owner, creatorBump)

	mint := types.NewAccount()
	ata, _, err := common.FindAssociatedTokenAddress(ownerKey, mint.PublicKey)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgSolanaInvalidKey, "owner")
	}
	rent, err := s.rpc.GetMinimumBalanceForRentExemption(ctx, token.MintAccountSize)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, i18n.MsgSolanaRPCErr, "getMinimumBalanceForRentExemption")
	}

	sig, err := s.submit(ctx, mint.PublicKey.ToBase58(), []types.Account{mint, s.payer},
		system.CreateAccount(system.CreateAccountParam{
			From:     s.payer.PublicKey,
			New:      mint.PublicKey,
			Owner:    common.TokenProgramID,
			Lamports: rent,
			Space:    token.MintAccountSize,
		}),
		token.InitializeMint(token.InitializeMintParam{
			Decimals:   0,
			Mint:       mint.PublicKey,
			MintAuth:   s.payer.PublicKey,
			FreezeAuth: &s.payer.PublicKey,
		}),
		associated_token_account.CreateAssociatedTokenAccount(associated_token_account.CreateAssociatedTokenAccountParam{
			Funder:                 s.payer.PublicKey,
			Owner:                  ownerKey,
			Mint:                   mint.PublicKey,
			AssociatedTokenAccount: ata,
		}),
		token.MintTo(token.MintToParam{
			Mint:   mint.PublicKey,
			To:     ata,
			Auth:   s.payer.PublicKey,
			Amount: 1,
		}),
	)
	if err != nil {
		return nil, err
	}
	return &fftypes.AssetRef{
		ID:           mint.PublicKey.ToBase58(),
		Owner:        owner,
		TokenAccount: ata.ToBase58(),
		Transaction:  sig,
	}, nil
}

// AttachMetadata writes the metadata account, then the master edition with a max supply of zero.
// The master edition takes over the mint authority, so no further units can be issued.
// Creators other than the payer are cleared to unverified on the record before submission.
func (s *Solana) AttachMetadata(ctx context.Context, asset *fftypes.AssetRef, record *fftypes.DescriptiveRecord) error {
	mint, err := publicKey(ctx, asset.ID, "asset")
	if err != nil {
		return err
	}
	metadataPubkey, err := token_metadata.GetTokenMetaPubkey(mint)
	if err != nil {
		return i18n.WrapError(ctx, err, i18n.MsgSolanaInvalidKey, "asset")
	}
	masterEditionPubkey, err := token_metadata.GetMasterEdition(mint)
	if err != nil {
		return i18n.WrapError(ctx, err, i18n.MsgSolanaInvalidKey, "asset")
	}

	// The payer is the only signer, and the metadata program refuses a verified creator that
	// has not signed. Any other creator is recorded unverified, and can verify later.
	creators := make([]token_metadata.Creator, len(record.Creators))
	for i, c := range record.Creators {
		if creators[i].Address, err = publicKey(ctx, c.Identity, "creator"); err != nil {
			return err
		}
		if c.Verified && creators[i].Address != s.payer.PublicKey {
			log.L(ctx).Infof("Creator %s is not the signing payer, recording it unverified on asset %s", c.Identity, asset.ID)
			c.Verified = false
		}
		creators[i].Verified = c.Verified
		creators[i].Share = c.Share
	}
	data := token_metadata.DataV2{
		Name:                 record.Name,
		Symbol:               record.Symbol,
		Uri:                  record.URI,
		SellerFeeBasisPoints: record.SellerFeeBasisPoints,
		Creators:             &creators,
	}
	if record.Collection != nil {
		collectionKey, err := publicKey(ctx, record.Collection.ID, "collection")
		if err != nil {
			return err
		}
		data.Collection = &token_metadata.Collection{
			Verified: record.Collection.Verified,
			Key:      collectionKey,
		}
	}

	maxSupply := uint64(0)
	sig, err := s.submit(ctx, asset.ID, []types.Account{s.payer},
		token_metadata.CreateMetadataAccountV3(token_metadata.CreateMetadataAccountV3Param{
			Metadata:                metadataPubkey,
			Mint:                    mint,
			MintAuthority:           s.payer.PublicKey,
			UpdateAuthority:         s.payer.PublicKey,
			Payer:                   s.payer.PublicKey,
			UpdateAuthorityIsSigner: true,
			IsMutable:               true,
			Data:                    data,
		}),
		token_metadata.CreateMasterEditionV3(token_metadata.CreateMasterEditionParam{
			Edition:         masterEditionPubkey,
			Mint:            mint,
			UpdateAuthority: s.payer.PublicKey,
			MintAuthority:   s.payer.PublicKey,
			Metadata:        metadataPubkey,
			Payer:           s.payer.PublicKey,
			MaxSupply:       &maxSupply,
		}),
	)
	if err != nil {
		return err
	}
	record.Transaction = sig
	return nil
}
