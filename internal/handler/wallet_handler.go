package handler

import (
	"net/http"

	"github.com/bakoushin/celo-box/internal/deeplink"
	"github.com/bakoushin/celo-box/internal/logger"
	"github.com/bakoushin/celo-box/internal/logic"
	"github.com/bakoushin/celo-box/internal/wallet"
	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	bridge   *wallet.Bridge
	boxLogic *logic.BoxLogic
}

func NewWalletHandler(bridge *wallet.Bridge, boxLogic *logic.BoxLogic) *WalletHandler {
	return &WalletHandler{
		bridge:   bridge,
		boxLogic: boxLogic,
	}
}

// Callback 外部钱包回调入口
//
// 回调处理器在进程启动时注册一次，对同一requestId的重复回调幂等。
func (h *WalletHandler) Callback(c *gin.Context) {
	cb, err := deeplink.ParseCallback(c.Request.URL.Query())
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if !h.bridge.Resolve(cb) {
		// 重复回调或请求已过期：丢弃，不当作错误
		logger.Warn("Dropped wallet callback for unknown request %s", cb.RequestID)
	}

	SuccessResponse(c, http.StatusOK, "", nil)
}

// Connect 账户授权流程，挂起等待钱包返回账户地址
func (h *WalletHandler) Connect(c *gin.Context) {
	address, err := h.boxLogic.ConnectAccount(c.Request.Context())
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "", ConnectAccountResponse{Address: address})
}
