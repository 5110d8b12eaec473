// Command matchcore-client is a small CLI demonstration client for
// matchcore-server, adapted from the teacher's cmd/client/client.go:
// same flag-driven single-shot action plus background report reader
// shape, wired onto the new wire format in internal/net.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"net"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/saiputravu/matchcore/internal/common"
	"github.com/saiputravu/matchcore/internal/engine"
	matchnet "github.com/saiputravu/matchcore/internal/net"
)

func main() {
	serverAddr := flag.String("server", "127.0.0.1:9001", "address of the matchcore server")
	action := flag.String("action", "limit", "action to perform: ['market', 'limit', 'amend', 'cancel']")

	orderAsset := flag.String("order-asset", "BTC", "order asset symbol")
	priceAsset := flag.String("price-asset", "USD", "price asset symbol")
	sideStr := flag.String("side", "buy", "order side: 'buy' or 'sell'")
	price := flag.Float64("price", 100.0, "limit price")
	qty := flag.Float64("qty", 1.0, "quantity")
	id := flag.Uint64("id", 0, "order id, required for 'amend' and 'cancel'")

	flag.Parse()

	side := engine.Bid
	if strings.ToLower(*sideStr) == "sell" {
		side = engine.Ask
	}

	conn, err := net.Dial("tcp", *serverAddr)
	if err != nil {
		log.Fatalf("failed to connect to server at %s: %v", *serverAddr, err)
	}
	defer conn.Close()
	fmt.Printf("connected to %s\n", *serverAddr)

	go readReplies(conn)

	var buf []byte
	switch strings.ToLower(*action) {
	case "market":
		buf = encodeNewMarket(common.Symbol(*orderAsset), common.Symbol(*priceAsset), side, *qty)
	case "limit":
		buf = encodeNewLimit(common.Symbol(*orderAsset), common.Symbol(*priceAsset), side, *price, *qty)
	case "amend":
		if *id == 0 {
			log.Fatal("-id is required for 'amend'")
		}
		buf = encodeAmend(*id, side, *price, *qty)
	case "cancel":
		if *id == 0 {
			log.Fatal("-id is required for 'cancel'")
		}
		buf = encodeCancel(*id, side)
	default:
		log.Fatalf("unknown action: %s", *action)
	}

	if _, err := conn.Write(buf); err != nil {
		log.Fatalf("failed to send request: %v", err)
	}
	fmt.Println("-> request sent, listening for replies (Ctrl+C to exit)...")
	select {}
}

func putSymbol(buf []byte, s common.Symbol) { copy(buf, []byte(s)) }

func encodeNewMarket(orderAsset, priceAsset common.Symbol, side engine.OrderSide, qty float64) []byte {
	buf := make([]byte, 2+4+4+1+8+16)
	binary.BigEndian.PutUint16(buf[0:2], uint16(matchnet.MsgNewMarket))
	putSymbol(buf[2:6], orderAsset)
	putSymbol(buf[6:10], priceAsset)
	buf[10] = byte(side)
	binary.BigEndian.PutUint64(buf[11:19], math.Float64bits(qty))
	corr := uuid.New()
	copy(buf[19:35], corr[:])
	return buf
}

func encodeNewLimit(orderAsset, priceAsset common.Symbol, side engine.OrderSide, price, qty float64) []byte {
	buf := make([]byte, 2+4+4+1+8+8+16)
	binary.BigEndian.PutUint16(buf[0:2], uint16(matchnet.MsgNewLimit))
	putSymbol(buf[2:6], orderAsset)
	putSymbol(buf[6:10], priceAsset)
	buf[10] = byte(side)
	binary.BigEndian.PutUint64(buf[11:19], math.Float64bits(price))
	binary.BigEndian.PutUint64(buf[19:27], math.Float64bits(qty))
	corr := uuid.New()
	copy(buf[27:43], corr[:])
	return buf
}

func encodeAmend(id uint64, side engine.OrderSide, price, qty float64) []byte {
	buf := make([]byte, 2+8+1+8+8+16)
	binary.BigEndian.PutUint16(buf[0:2], uint16(matchnet.MsgAmend))
	binary.BigEndian.PutUint64(buf[2:10], id)
	buf[10] = byte(side)
	binary.BigEndian.PutUint64(buf[11:19], math.Float64bits(price))
	binary.BigEndian.PutUint64(buf[19:27], math.Float64bits(qty))
	corr := uuid.New()
	copy(buf[27:43], corr[:])
	return buf
}

func encodeCancel(id uint64, side engine.OrderSide) []byte {
	buf := make([]byte, 2+8+1+16)
	binary.BigEndian.PutUint16(buf[0:2], uint16(matchnet.MsgCancel))
	binary.BigEndian.PutUint64(buf[2:10], id)
	buf[10] = byte(side)
	corr := uuid.New()
	copy(buf[11:27], corr[:])
	return buf
}

// readReplies continuously reads fixed-size event records off the
// wire and prints them until the connection closes.
func readReplies(conn net.Conn) {
	buf := make([]byte, matchnet.EventWireLen)
	for {
		if _, err := io.ReadFull(conn, buf); err != nil {
			if err != io.EOF {
				log.Printf("connection lost: %v", err)
			}
			os.Exit(0)
		}
		decoded, err := matchnet.DecodeEvent(buf)
		if err != nil {
			log.Printf("error decoding reply: %v", err)
			continue
		}
		fmt.Printf("[%s] %s\n", decoded.Correlation, common.DescribeEvent(decoded.Event))
	}
}
