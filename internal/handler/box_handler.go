package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/bakoushin/celo-box/internal/chain"
	"github.com/bakoushin/celo-box/internal/config"
	"github.com/bakoushin/celo-box/internal/deeplink"
	"github.com/bakoushin/celo-box/internal/logic"
	"github.com/bakoushin/celo-box/internal/model"
	"github.com/bakoushin/celo-box/internal/storage"
	"github.com/bakoushin/celo-box/internal/view"
	"github.com/gin-gonic/gin"
)

type BoxHandler struct {
	boxLogic      *logic.BoxLogic
	metadataLogic *logic.MetadataLogic
	merger        *view.Merger
	images        *storage.ImageStore
	baseUrl       string
}

func NewBoxHandler(boxLogic *logic.BoxLogic, metadataLogic *logic.MetadataLogic, merger *view.Merger, images *storage.ImageStore, cfg *config.Config) *BoxHandler {
	return &BoxHandler{
		boxLogic:      boxLogic,
		metadataLogic: metadataLogic,
		merger:        merger,
		images:        images,
		baseUrl:       cfg.Server.BaseUrl,
	}
}

// CreateBox 创建Box（链上创建 + 写入元数据）
func (h *BoxHandler) CreateBox(c *gin.Context) {
	var req CreateBoxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	network, err := chain.ParseNetwork(req.Network)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	currency, err := chain.ParseCurrency(req.Currency)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	boxAddress, err := h.boxLogic.CreateBox(c.Request.Context(), logic.CreateBoxParams{
		Network:             network,
		Currency:            currency,
		Goal:                req.Goal,
		MinimalContribution: req.MinimalContribution,
		OwnerAddress:        req.OwnerAddress,
		ReceiverAddress:     req.ReceiverAddress,
	})
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	// 元数据在Box创建时写入一次，此后不可变
	err = h.metadataLogic.CreateMetadata(c.Request.Context(), &model.BoxMetadataModel{
		BoxAddress:   boxAddress,
		Network:      string(network),
		Title:        req.Title,
		Description:  req.Description,
		Public:       req.Public,
		OwnerAddress: req.OwnerAddress,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusCreated, "Box创建成功", CreateBoxResponse{
		BoxAddress: boxAddress,
		ShareLink:  deeplink.BuildShareLink(h.baseUrl, boxAddress, string(network)),
	})
}

// ListBoxes 获取Box列表（元数据分页 + 链上字段补充）
func (h *BoxHandler) ListBoxes(c *gin.Context) {
	network, err := chain.ParseNetwork(c.DefaultQuery("network", "Mainnet"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	isPublic, err := strconv.ParseBool(c.DefaultQuery("public", "true"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的public参数")
		return
	}

	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(logic.DefaultPageSize)))

	items, nextCursor, err := h.metadataLogic.ListMetadata(c.Request.Context(), logic.ListQuery{
		IsPublic:     isPublic,
		OwnerAddress: c.Query("owner"),
		Network:      network,
		Cursor:       c.Query("cursor"),
		PageSize:     pageSize,
	})
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	enriched, err := h.merger.BuildViewPage(c.Request.Context(), items, network)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "", ListBoxesResponse{
		Items:      enriched,
		NextCursor: nextCursor,
	})
}

// GetBox 获取单个Box的聚合视图
func (h *BoxHandler) GetBox(c *gin.Context) {
	network, err := chain.ParseNetwork(c.DefaultQuery("network", "Mainnet"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	boxView, err := h.merger.BuildView(c.Request.Context(), c.Param("address"), network)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "", boxView)
}

// GetContributors 获取Box的贡献记录
func (h *BoxHandler) GetContributors(c *gin.Context) {
	network, err := chain.ParseNetwork(c.DefaultQuery("network", "Mainnet"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	contributions, err := h.boxLogic.GetContributors(c.Request.Context(), c.Param("address"), network)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "", contributions)
}

// Contribute 向Box贡献资金
func (h *BoxHandler) Contribute(c *gin.Context) {
	var req ContributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	network, err := chain.ParseNetwork(req.Network)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	currency, err := chain.ParseCurrency(req.Currency)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	err = h.boxLogic.Contribute(c.Request.Context(), logic.ContributeParams{
		Amount:        req.Amount,
		Currency:      currency,
		BoxAddress:    c.Param("address"),
		SenderAddress: req.SenderAddress,
		Network:       network,
	})
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "贡献成功", nil)
}

// Revoke 撤回贡献
func (h *BoxHandler) Revoke(c *gin.Context) {
	h.boxAction(c, "撤回成功", h.boxLogic.RevokeContribution)
}

// Redeem 接收方提取资金
func (h *BoxHandler) Redeem(c *gin.Context) {
	h.boxAction(c, "提取成功", h.boxLogic.Redeem)
}

// Finalize 发起方划转资金给接收方
func (h *BoxHandler) Finalize(c *gin.Context) {
	h.boxAction(c, "划转成功", h.boxLogic.Finalize)
}

// UploadImage 上传封面图片
func (h *BoxHandler) UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	defer file.Close()

	boxAddress := c.Param("address")
	imageRef, err := h.images.PutImage(c.Request.Context(), boxAddress, fileHeader.Header.Get("Content-Type"), file)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	if err := h.metadataLogic.AttachImage(c.Request.Context(), boxAddress, imageRef); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "图片上传成功", UploadImageResponse{ImageRef: imageRef})
}

// Share 获取Box的分享链接和区块浏览器链接
func (h *BoxHandler) Share(c *gin.Context) {
	network, err := chain.ParseNetwork(c.DefaultQuery("network", "Mainnet"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	boxAddress := c.Param("address")
	SuccessResponse(c, http.StatusOK, "", ShareResponse{
		ShareLink:    deeplink.BuildShareLink(h.baseUrl, boxAddress, string(network)),
		ExplorerLink: h.boxLogic.ExplorerLink(network, boxAddress),
	})
}

// OpenShareLink 解析分享链接，定位到Box详情
func (h *BoxHandler) OpenShareLink(c *gin.Context) {
	boxAddress, networkName, err := deeplink.ParseShareLink(c.Request.URL.Query())
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	network, err := chain.ParseNetwork(networkName)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "", OpenLinkResponse{
		BoxAddress: boxAddress,
		Network:    string(network),
	})
}

// boxAction 单交易操作的公共处理流程
func (h *BoxHandler) boxAction(c *gin.Context, message string, action func(ctx context.Context, boxAddress, actorAddress string, currency chain.Currency, network chain.Network) error) {
	var req BoxActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	network, err := chain.ParseNetwork(req.Network)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	currency, err := chain.ParseCurrency(req.Currency)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := action(c.Request.Context(), c.Param("address"), req.ActorAddress, currency, network); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, message, nil)
}
