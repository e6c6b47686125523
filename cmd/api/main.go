package main

// @title Prune Session Deck APIs
// @version 1.0
// @description Swipe-to-triage review sessions over a media library.

// @contact.name API Support

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:9089
// @BasePath /
// @schemes http
import (
	_ "github.com/ZHANGV25/Prune/docs"
	protocol "github.com/ZHANGV25/Prune/protocal"

	_ "github.com/arsmn/fiber-swagger/v2"
	"github.com/sirupsen/logrus"
)

func main() {
	err := protocol.ServeHTTP()
	if err != nil {
		logrus.Println(err)
	}
}
