// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package api exposes the read-only JSON-RPC surface of the
// marketplace: lab listings, reservations, calendars, payout state,
// and stake records. All mutation happens through market actions, not
// this API.
package api

import (
	"errors"
	"net/http"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/labx-protocol/labmarket/codec"
	"github.com/labx-protocol/labmarket/genesis"
	"github.com/labx-protocol/labmarket/state"
	"github.com/labx-protocol/labmarket/storage"
)

const (
	Name     = "labmarket"
	Endpoint = "/rpc"

	// MaxPageSize bounds a single Labs query.
	MaxPageSize = 128
)

var ErrPageTooLarge = errors.New("requested page exceeds maximum size")

// Backend supplies the JSON-RPC server with a read view of the current
// state.
type Backend interface {
	ReadState() state.Immutable
	Rules() *genesis.Rules
}

type JSONRPCServer struct {
	b Backend
}

func NewJSONRPCServer(b Backend) *JSONRPCServer {
	return &JSONRPCServer{b: b}
}

type PingReply struct {
	Success bool `json:"success"`
}

func (*JSONRPCServer) Ping(_ *http.Request, _ *struct{}, reply *PingReply) error {
	reply.Success = true
	return nil
}

type RulesReply struct {
	Rules *genesis.Rules `json:"rules"`
}

func (j *JSONRPCServer) Rules(_ *http.Request, _ *struct{}, reply *RulesReply) error {
	reply.Rules = j.b.Rules()
	return nil
}

type LabArgs struct {
	LabID uint64 `json:"labID"`
}

type LabReply struct {
	Lab        *storage.Lab              `json:"lab"`
	Owner      codec.Address             `json:"owner"`
	Reputation *storage.ReputationRecord `json:"reputation"`
}

func (j *JSONRPCServer) Lab(req *http.Request, args *LabArgs, reply *LabReply) error {
	ctx := req.Context()
	im := j.b.ReadState()
	lab, err := storage.GetLab(ctx, im, args.LabID)
	if err != nil {
		return err
	}
	owner, err := storage.GetLabOwner(ctx, im, args.LabID)
	if err != nil {
		return err
	}
	rep, err := storage.GetReputation(ctx, im, args.LabID)
	if err != nil {
		return err
	}
	reply.Lab = lab
	reply.Owner = owner
	reply.Reputation = rep
	return nil
}

type LabsArgs struct {
	// Offset is the first lab id to return; lab ids start at 1.
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

type LabsReply struct {
	Labs []*storage.Lab `json:"labs"`
	// Next is the offset to resume from, zero when exhausted.
	Next uint64 `json:"next"`
}

// Labs returns a page of registered labs. Lab ids are dense, so
// pagination is a simple id range walk.
func (j *JSONRPCServer) Labs(req *http.Request, args *LabsArgs, reply *LabsReply) error {
	if args.Limit > MaxPageSize {
		return ErrPageTooLarge
	}
	if args.Limit == 0 {
		args.Limit = MaxPageSize
	}
	if args.Offset == 0 {
		args.Offset = 1
	}
	ctx := req.Context()
	im := j.b.ReadState()
	count, err := storage.LabCount(ctx, im)
	if err != nil {
		return err
	}
	labs := make([]*storage.Lab, 0, args.Limit)
	id := args.Offset
	for ; id <= count && uint64(len(labs)) < args.Limit; id++ {
		lab, err := storage.GetLab(ctx, im, id)
		if err != nil {
			return err
		}
		labs = append(labs, lab)
	}
	reply.Labs = labs
	if id <= count {
		reply.Next = id
	}
	return nil
}

type ReservationArgs struct {
	ReservationID ids.ID `json:"reservationID"`
}

type ReservationReply struct {
	Reservation *storage.Reservation `json:"reservation"`
	Status      string               `json:"status"`
}

func (j *JSONRPCServer) Reservation(req *http.Request, args *ReservationArgs, reply *ReservationReply) error {
	res, err := storage.GetReservation(req.Context(), j.b.ReadState(), args.ReservationID)
	if err != nil {
		return err
	}
	reply.Reservation = res
	reply.Status = res.Status.String()
	return nil
}

type CalendarReply struct {
	Intervals []CalendarInterval `json:"intervals"`
}

type CalendarInterval struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

func (j *JSONRPCServer) Calendar(req *http.Request, args *LabArgs, reply *CalendarReply) error {
	set, err := storage.GetCalendar(req.Context(), j.b.ReadState(), args.LabID)
	if err != nil {
		return err
	}
	reply.Intervals = make([]CalendarInterval, 0, len(set))
	for _, iv := range set {
		reply.Intervals = append(reply.Intervals, CalendarInterval{Start: iv.Start, End: iv.End})
	}
	return nil
}

type PayoutsReply struct {
	Pending    uint64 `json:"pending"`
	LastUpdate int64  `json:"lastUpdate"`
	HeapSize   int    `json:"heapSize"`
	HeapStale  int    `json:"heapStale"`
}

func (j *JSONRPCServer) Payouts(req *http.Request, args *LabArgs, reply *PayoutsReply) error {
	ctx := req.Context()
	im := j.b.ReadState()
	pending, lastUpdate, err := storage.GetProviderBucket(ctx, im, args.LabID)
	if err != nil {
		return err
	}
	size, stale, err := storage.PayoutHeapSize(ctx, im, args.LabID)
	if err != nil {
		return err
	}
	reply.Pending = pending
	reply.LastUpdate = lastUpdate
	reply.HeapSize = size
	reply.HeapStale = stale
	return nil
}

type BucketsReply struct {
	Treasury   uint64 `json:"treasury"`
	Subsidies  uint64 `json:"subsidies"`
	Governance uint64 `json:"governance"`
}

func (j *JSONRPCServer) Buckets(req *http.Request, _ *struct{}, reply *BucketsReply) error {
	ctx := req.Context()
	im := j.b.ReadState()
	var err error
	if reply.Treasury, err = storage.GetGlobalBucket(ctx, im, storage.BucketTreasury); err != nil {
		return err
	}
	if reply.Subsidies, err = storage.GetGlobalBucket(ctx, im, storage.BucketSubsidies); err != nil {
		return err
	}
	reply.Governance, err = storage.GetGlobalBucket(ctx, im, storage.BucketGovernance)
	return err
}

type StakeArgs struct {
	Provider codec.Address `json:"provider"`
}

type StakeReply struct {
	Staked          uint64 `json:"staked"`
	Listed          uint64 `json:"listed"`
	LastReservation int64  `json:"lastReservation"`
}

func (j *JSONRPCServer) Stake(req *http.Request, args *StakeArgs, reply *StakeReply) error {
	rec, err := storage.GetStake(req.Context(), j.b.ReadState(), args.Provider)
	if err != nil {
		return err
	}
	reply.Staked = rec.Staked
	reply.Listed = rec.Listed
	reply.LastReservation = rec.LastReservation
	return nil
}

type BalanceArgs struct {
	Address codec.Address `json:"address"`
}

type BalanceReply struct {
	Balance uint64 `json:"balance"`
}

func (j *JSONRPCServer) Balance(req *http.Request, args *BalanceArgs, reply *BalanceReply) error {
	bal, err := storage.GetBalance(req.Context(), j.b.ReadState(), args.Address)
	if err != nil {
		return err
	}
	reply.Balance = bal
	return nil
}
