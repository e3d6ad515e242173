package controller

import (
	"github.com/sarchlab/perfmips/funcmodel"
	"github.com/sarchlab/perfmips/timing/cycle"
	"github.com/sarchlab/perfmips/timing/port"
)

const (
	portLatency cycle.Latency = 1
	portBW      uint32        = 1
	portFanout  uint32        = 1
	flushFanout uint32        = 4
)

// ifIdData is the fetch→decode latch contents: the raw word plus the
// prediction annotation decode needs to build a FuncInstr.
type ifIdData struct {
	raw             uint32
	pc              cycle.Addr
	predictedTaken  bool
	predictedTarget cycle.Addr
}

// ports bundles every named port the pipeline wires at construction. It is
// embedded in Controller rather than kept as a separate object so the
// stage methods can reach their ports directly.
type ports struct {
	wpFetch2Decode *port.WritePort[ifIdData]
	rpFetch2Decode *port.ReadPort[ifIdData]

	wpDecode2FetchStall *port.WritePort[bool]
	rpDecode2FetchStall *port.ReadPort[bool]

	wpDecode2Decode *port.WritePort[funcmodel.FuncInstr]
	rpDecode2Decode *port.ReadPort[funcmodel.FuncInstr]

	wpDecode2Execute *port.WritePort[funcmodel.FuncInstr]
	rpDecode2Execute *port.ReadPort[funcmodel.FuncInstr]

	wpExecute2Memory *port.WritePort[funcmodel.FuncInstr]
	rpExecute2Memory *port.ReadPort[funcmodel.FuncInstr]

	wpMemory2Writeback *port.WritePort[funcmodel.FuncInstr]
	rpMemory2Writeback *port.ReadPort[funcmodel.FuncInstr]

	wpMemory2AllFlush *port.WritePort[bool]
	rpFetchFlush      *port.ReadPort[bool]
	rpDecodeFlush     *port.ReadPort[bool]
	rpExecuteFlush    *port.ReadPort[bool]
	rpMemoryFlush     *port.ReadPort[bool]

	wpMemory2FetchTarget *port.WritePort[cycle.Addr]
	rpMemory2FetchTarget *port.ReadPort[cycle.Addr]
}

// wirePair declares a single-writer, single-reader named port in one call.
func wirePair[T any](reg *port.Registry, name string) (*port.WritePort[T], *port.ReadPort[T], error) {
	wp, err := port.MakeWritePort[T](reg, name, portBW, portFanout)
	if err != nil {
		return nil, nil, err
	}
	rp, err := port.MakeReadPort[T](reg, name, portLatency)
	if err != nil {
		return nil, nil, err
	}
	return wp, rp, nil
}

func wirePorts(reg *port.Registry) (*ports, error) {
	var p ports
	var err error

	if p.wpFetch2Decode, p.rpFetch2Decode, err = wirePair[ifIdData](reg, "FETCH_2_DECODE"); err != nil {
		return nil, err
	}
	if p.wpDecode2FetchStall, p.rpDecode2FetchStall, err = wirePair[bool](reg, "DECODE_2_FETCH_STALL"); err != nil {
		return nil, err
	}
	if p.wpDecode2Decode, p.rpDecode2Decode, err = wirePair[funcmodel.FuncInstr](reg, "DECODE_2_DECODE"); err != nil {
		return nil, err
	}
	if p.wpDecode2Execute, p.rpDecode2Execute, err = wirePair[funcmodel.FuncInstr](reg, "DECODE_2_EXECUTE"); err != nil {
		return nil, err
	}
	if p.wpExecute2Memory, p.rpExecute2Memory, err = wirePair[funcmodel.FuncInstr](reg, "EXECUTE_2_MEMORY"); err != nil {
		return nil, err
	}
	if p.wpMemory2Writeback, p.rpMemory2Writeback, err = wirePair[funcmodel.FuncInstr](reg, "MEMORY_2_WRITEBACK"); err != nil {
		return nil, err
	}
	if p.wpMemory2FetchTarget, p.rpMemory2FetchTarget, err = wirePair[cycle.Addr](reg, "MEMORY_2_FETCH_TARGET"); err != nil {
		return nil, err
	}

	p.wpMemory2AllFlush, err = port.MakeWritePort[bool](reg, "MEMORY_2_ALL_FLUSH", portBW, flushFanout)
	if err != nil {
		return nil, err
	}
	readers := make([]*port.ReadPort[bool], flushFanout)
	for i := range readers {
		readers[i], err = port.MakeReadPort[bool](reg, "MEMORY_2_ALL_FLUSH", portLatency)
		if err != nil {
			return nil, err
		}
	}
	p.rpFetchFlush, p.rpDecodeFlush, p.rpExecuteFlush, p.rpMemoryFlush = readers[0], readers[1], readers[2], readers[3]

	if err := port.InitPorts(reg); err != nil {
		return nil, err
	}
	return &p, nil
}
